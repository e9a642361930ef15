package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"` // Имя пользователя
	Role                 string `json:"role"`     // Роль пользователя
	UserUID              string `json:"useruid"`  // Идентификатор пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// emailClaims хранит email для токена подтверждения почты.
type emailClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Срок жизни токена подтверждения электронной почты.
const emailTokenTTL = time.Hour

// GenerateToken создает access-токен с заданными username, role и uid,
// подписывая его секретным ключом. Время жизни токена определяется tokenTTL.
func (j *MakerImpl) GenerateToken(username, role, userUID string) (string, error) {
	return j.signed(username, role, userUID, j.tokenTTL)
}

// GenerateRefreshToken создает refresh-токен с теми же claims,
// но с увеличенным сроком жизни refreshTTL.
func (j *MakerImpl) GenerateRefreshToken(username, role, userUID string) (string, error) {
	return j.signed(username, role, userUID, j.refreshTTL)
}

func (j *MakerImpl) signed(username, role, userUID string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Username: username,
		Role:     role,
		UserUID:  userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// GenerateEmailToken создает токен подтверждения электронной почты.
// Токен живёт один час и содержит только email получателя.
func (j *MakerImpl) GenerateEmailToken(email string) (string, error) {
	claims := emailClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(emailTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// ParseEmailToken проверяет токен подтверждения почты и возвращает email.
func (j *MakerImpl) ParseEmailToken(tokenStr string) (string, error) {
	const op = "jwt.ParseEmailToken"
	token, err := jwt.ParseWithClaims(tokenStr, &emailClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*emailClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return "", fmt.Errorf("%s: invalid token", op)
	}
	return claims.Email, nil
}
