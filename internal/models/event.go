// Package models содержит доменные структуры события,
// а также вспомогательные типы для работы с данными из JSON-запросов.
package models

import "time"

// Event представляет собой мероприятие, созданное организатором.
//
// Поля Description и Location могут быть nil — это означает, что
// организатор их не заполнил. MaxParticipants ограничивает количество
// подтверждённых регистраций; сверх лимита участники попадают в лист ожидания.
type Event struct {
	ID              int       `json:"id"`                    // Идентификатор события
	Title           string    `json:"title"`                 // Название события
	Description     *string   `json:"description,omitempty"` // Описание события (опционально)
	StartDatetime   time.Time `json:"start_datetime"`        // Дата и время начала
	EndDatetime     time.Time `json:"end_datetime"`          // Дата и время окончания
	Location        *string   `json:"location,omitempty"`    // Место проведения (опционально)
	MaxParticipants int       `json:"max_participants"`      // Максимум подтверждённых участников
	IsActive        bool      `json:"is_active"`             // Открыто ли событие для регистрации
	CreatedAt       time.Time `json:"created_at"`            // Дата создания записи
	OrganizerUID    string    `json:"organizer_uid"`         // Идентификатор организатора
}

// CreateEventRequest используется для приёма данных нового события из JSON-запроса.
// Даты приходят в формате RFC3339.
type CreateEventRequest struct {
	Title           string  `json:"title" validate:"required,max=100"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=500"`
	StartDatetime   string  `json:"start_datetime" validate:"required"`
	EndDatetime     string  `json:"end_datetime" validate:"required"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=200"`
	MaxParticipants *int    `json:"max_participants,omitempty" validate:"omitempty,gte=0"`
}

// UpdateEventRequest описывает частичное обновление события:
// изменяются только те поля, которые присутствуют в запросе,
// остальные остаются без изменений.
type UpdateEventRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=500"`
	StartDatetime   *string `json:"start_datetime,omitempty"`
	EndDatetime     *string `json:"end_datetime,omitempty"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=200"`
	MaxParticipants *int    `json:"max_participants,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// EventPatch содержит распарсенные поля частичного обновления,
// готовые к применению в хранилище.
type EventPatch struct {
	Title           *string
	Description     *string
	StartDatetime   *time.Time
	EndDatetime     *time.Time
	Location        *string
	MaxParticipants *int
	IsActive        *bool
}
