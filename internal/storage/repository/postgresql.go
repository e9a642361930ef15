// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями, событиями и регистрациями. Предоставляет
// методы создания, чтения, обновления и удаления записей, а также
// транзакционные операции движка регистраций.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Обработчики переводят их в HTTP-статусы.
var (
	// ErrEventNotFound возвращается, если событие не существует.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventInactive возвращается при попытке регистрации на закрытое событие.
	ErrEventInactive = errors.New("event is inactive")
	// ErrAlreadyRegistered возвращается при повторной активной регистрации.
	ErrAlreadyRegistered = errors.New("user already has an active registration for this event")
	// ErrRegistrationNotFound возвращается, если активная регистрация отсутствует.
	ErrRegistrationNotFound = errors.New("active registration not found")
	// ErrUserNotFound возвращается, если пользователь не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists возвращается при регистрации с занятым email или username.
	ErrUserExists = errors.New("user with this email or username already exists")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями, событиями и регистрациями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ready сообщает о готовности хранилища, используется обработчиком health.
func (s *Storage) Ready() error {
	return CheckDatabaseReady(s)
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'events'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table events missing or query error: %w", err)
	}
	return nil
}
