// Package models содержит доменную модель регистрации участника на событие.
package models

import "time"

// Статусы регистрации. Статус cancelled является терминальным:
// из него нет переходов, повторная регистрация создаёт новую запись.
const (
	StatusConfirmed = "confirmed" // Подтверждённая регистрация, занимает место
	StatusWaitlist  = "waitlist"  // Лист ожидания, повышается по FIFO
	StatusCancelled = "cancelled" // Отменённая регистрация, хранится для истории
)

// Registration представляет регистрацию пользователя на событие.
//
// RegisteredAt задаёт порядок повышения из листа ожидания; при равенстве
// времени порядок определяется возрастанием ID.
type Registration struct {
	ID           int       `json:"id"`            // Идентификатор регистрации
	UserUID      string    `json:"user_uid"`      // Идентификатор пользователя
	EventID      int       `json:"event_id"`      // Идентификатор события
	RegisteredAt time.Time `json:"registered_at"` // Момент регистрации (ключ FIFO-порядка)
	Status       string    `json:"status"`        // confirmed, waitlist или cancelled
}

// CancelResult описывает результат отмены регистрации.
// PromotedID заполняется, если отмена подтверждённой регистрации
// повысила старейшую запись из листа ожидания.
type CancelResult struct {
	CancelledID int    // ID отменённой регистрации
	WasStatus   string // Статус регистрации до отмены
	PromotedID  *int   // ID повышенной регистрации, если повышение произошло
}

// Participant описывает участника события для списка организатора.
type Participant struct {
	RegistrationID int       `json:"registration_id"` // ID регистрации
	UserUID        string    `json:"user_uid"`        // Идентификатор пользователя
	Username       string    `json:"username"`        // Имя пользователя
	Email          string    `json:"email"`           // Электронная почта
	Status         string    `json:"status"`          // Статус регистрации
	RegisteredAt   time.Time `json:"registered_at"`   // Момент регистрации
}

// EmailMessage — сообщение для воркера отправки писем,
// публикуется в RabbitMQ в формате JSON.
type EmailMessage struct {
	Kind     string `json:"kind"`     // Тип письма: confirmation, registration, promotion
	Email    string `json:"email"`    // Адрес получателя
	Username string `json:"username"` // Имя получателя
	Subject  string `json:"subject"`  // Тема письма
	Body     string `json:"body"`     // Текст письма
}
