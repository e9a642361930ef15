// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, роль и флаги активации.
// Структура используется в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
//
// Пользователь создаётся неактивным и становится активным только после
// подтверждения электронной почты по ссылке из письма.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное)
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	IsActive     bool      // Активна ли учётная запись (после подтверждения почты)
	IsVerified   bool      // Подтверждена ли электронная почта
	CreatedAt    time.Time // Дата создания учётной записи
}

// IsAdmin сообщает, обладает ли пользователь правами администратора.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// RegisterUserRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest используется для обновления access-токена по refresh-токену.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
