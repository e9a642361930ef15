// Package create реализует HTTP-обработчик создания нового события.
//
// Handler принимает JSON с данными события, валидирует их, извлекает
// идентификатор организатора из контекста и возвращает ID созданной записи.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
	eventservice "github.com/magabrotheeeer/event-manager/internal/services/event"
)

// Handler обрабатывает запросы на создание событий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики создания событий
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания события.
type Service interface {
	Create(ctx context.Context, organizerUID string, req models.CreateEventRequest) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать новое событие
// @Description Создает событие, организатором становится текущий пользователь.
// @Tags Events
// @Accept  json
// @Produce  json
// @Param request body models.CreateEventRequest true "Данные нового события"
// @Success 201 {object} map[string]any "Событие создано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или даты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании события"
// @Security BearerAuth
// @Router /events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("title", req.Title))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	organizerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || organizerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), organizerUID, req)
	if err != nil {
		if errors.Is(err, eventservice.ErrInvalidDates) {
			log.Error("invalid event dates", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event dates"))
			return
		}
		log.Error("failed to create event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create event"))
		return
	}

	log.Info("event created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
