// Package services содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией: регистрацию, подтверждение почты, вход и валидацию JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/event-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/event-manager/internal/lib/password"
	"github.com/magabrotheeeer/event-manager/internal/models"
)

// Ошибки уровня сервиса аутентификации.
var (
	// ErrInvalidCredentials возвращается при неверной паре email-пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive возвращается при входе до подтверждения почты.
	ErrUserInactive = errors.New("user has not confirmed email")
	// ErrAlreadyConfirmed возвращается при повторном подтверждении почты.
	ErrAlreadyConfirmed = errors.New("user already confirmed")
	// ErrInvalidConfirmationToken возвращается, если токен из письма
	// подтверждения не прошёл проверку подписи или истёк.
	ErrInvalidConfirmationToken = errors.New("invalid confirmation token")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ActivateUser помечает пользователя активным, возвращает число изменённых строк.
	ActivateUser(ctx context.Context, email string) (int, error)
}

// Notifier описывает асинхронную отправку писем.
type Notifier interface {
	Dispatch(msg models.EmailMessage)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	notifier  Notifier
	publicURL string
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, notifier Notifier, publicURL string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		notifier:  notifier,
		publicURL: publicURL,
		log:       log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью user.
// Учётная запись неактивна до перехода по ссылке из письма подтверждения;
// письмо отправляется асинхронно и не блокирует регистрацию.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
		IsActive:     false,
		IsVerified:   false,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", err
	}

	token, err := s.jwtMaker.GenerateEmailToken(email)
	if err != nil {
		// регистрация уже состоялась, письмо можно запросить повторно
		s.log.Error("failed to generate confirmation token", slog.String("email", email))
		return uid, nil
	}
	s.notifier.Dispatch(models.EmailMessage{
		Kind:     "confirmation",
		Email:    email,
		Username: username,
		Subject:  "Подтвердите регистрацию",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nДля подтверждения регистрации перейдите по ссылке: %s/api/v1/auth/verify-email/%s",
			username, s.publicURL, token),
	})
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует пару JWT (access + refresh).
// Вход доступен только пользователям с подтверждённой почтой.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, refresh, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", "", ErrUserInactive
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", "", err
	}
	refresh, err = s.jwtMaker.GenerateRefreshToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", "", err
	}
	return token, refresh, user.Role, nil
}

// Refresh проверяет refresh-токен и выдает новый access-токен.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	return s.jwtMaker.GenerateToken(claims.Username, claims.Role, claims.UserUID)
}

// ConfirmEmail проверяет токен подтверждения и активирует учётную запись.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	email, err := s.jwtMaker.ParseEmailToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfirmationToken, err)
	}
	affected, err := s.users.ActivateUser(ctx, email)
	if err != nil {
		return err
	}
	if affected == 0 {
		// пользователь не найден либо уже активирован
		user, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user.IsActive {
			return ErrAlreadyConfirmed
		}
		return fmt.Errorf("failed to activate user %s", email)
	}
	return nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе,
// роль и признак валидности.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, string, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", false, err
	}
	user := &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}
	return user, claims.Role, true, nil
}
