// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов доступа,
// refresh-токенов и токенов подтверждения электронной почты.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает access-токен с username, role и uid пользователя.
	GenerateToken(username, role, userUID string) (string, error)
	// GenerateRefreshToken создает refresh-токен с увеличенным сроком жизни.
	GenerateRefreshToken(username, role, userUID string) (string, error)
	// GenerateEmailToken создает токен подтверждения электронной почты.
	GenerateEmailToken(email string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// ParseEmailToken возвращает email из токена подтверждения.
	ParseEmailToken(tokenStr string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов
	tokenTTL   time.Duration // Время жизни access-токена
	refreshTTL time.Duration // Время жизни refresh-токена
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, tokenTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}
