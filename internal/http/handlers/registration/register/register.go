// Package register реализует HTTP-обработчик записи пользователя на событие.
//
// Handler извлекает ID события из URL и идентификатор пользователя из
// контекста, вызывает движок регистраций и возвращает итоговый статус:
// confirmed при наличии мест или waitlist при заполненном событии.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// Handler обрабатывает запросы на регистрацию участника.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис движка регистраций
}

// Service описывает интерфейс движка регистраций.
type Service interface {
	Register(ctx context.Context, eventID int, userUID string) (*models.Registration, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Записаться на событие
// @Description Регистрирует текущего пользователя на событие. При наличии мест регистрация подтверждается сразу, иначе попадает в лист ожидания.
// @Tags Registrations
// @Produce  json
// @Param id path int true "ID события"
// @Success 201 {object} map[string]any "Регистрация создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или активная регистрация уже существует"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено или закрыто для регистрации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при регистрации"
// @Security BearerAuth
// @Router /events/{id}/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	eventID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	reg, err := h.service.Register(r.Context(), eventID, userUID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			log.Error("event not found", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, repository.ErrEventInactive):
			log.Error("event is closed for registration", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event is closed for registration"))
		case errors.Is(err, repository.ErrAlreadyRegistered):
			log.Error("active registration already exists", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("active registration already exists"))
		default:
			log.Error("failed to register for event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not register for event"))
		}
		return
	}

	log.Info("registration created",
		slog.Int("registration_id", reg.ID),
		slog.String("status", reg.Status))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"registration_id": reg.ID,
		"status":          reg.Status,
	}))
}
