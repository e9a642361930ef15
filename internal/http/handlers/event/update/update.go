// Package update реализует HTTP-обработчик частичного обновления события.
//
// Handler принимает JSON с изменяемыми полями, проверяет права вызывающего
// (организатор или администратор) и применяет обновление.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
	eventservice "github.com/magabrotheeeer/event-manager/internal/services/event"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// Handler обрабатывает запросы на обновление событий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики обновления событий
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики обновления события.
type Service interface {
	Update(ctx context.Context, id int, callerUID, callerRole string, req models.UpdateEventRequest) (int, error)
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
// @Summary Обновить событие
// @Description Частично обновляет событие. Доступно организатору и администратору.
// @Tags Events
// @Accept  json
// @Produce  json
// @Param id path int true "ID события"
// @Param request body models.UpdateEventRequest true "Изменяемые поля"
// @Success 200 {object} map[string]any "Событие обновлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или даты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	callerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	count, err := h.service.Update(r.Context(), id, callerUID, callerRole, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			log.Error("event not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, eventservice.ErrForbidden):
			log.Error("caller is not organizer or admin", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only organizer or admin can update event"))
		case errors.Is(err, eventservice.ErrInvalidDates):
			log.Error("invalid event dates", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event dates"))
		default:
			log.Error("failed to update event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update event"))
		}
		return
	}

	log.Info("event updated", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated": count,
	}))
}
