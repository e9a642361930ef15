// Package cancel реализует HTTP-обработчик отмены регистрации на событие.
//
// Handler отменяет активную регистрацию текущего пользователя. Если была
// отменена подтверждённая регистрация, движок повышает старейшую запись
// листа ожидания, её ID возвращается в ответе.
package cancel

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

// Handler обрабатывает запросы на отмену регистрации.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис движка регистраций
}

// Service описывает интерфейс движка регистраций.
type Service interface {
	Cancel(ctx context.Context, eventID int, userUID string) (*models.CancelResult, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить регистрацию на событие
// @Description Отменяет активную регистрацию текущего пользователя. При отмене подтверждённой регистрации место получает старейший участник листа ожидания.
// @Tags Registrations
// @Produce  json
// @Param id path int true "ID события"
// @Success 200 {object} map[string]any "Регистрация отменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Активная регистрация или событие не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отмене"
// @Security BearerAuth
// @Router /events/{id}/register [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.cancel"

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

	result, err := h.service.Cancel(r.Context(), eventID, userUID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			log.Error("event not found", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, repository.ErrRegistrationNotFound):
			log.Error("active registration not found", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("active registration not found"))
		default:
			log.Error("failed to cancel registration", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel registration"))
		}
		return
	}

	log.Info("registration cancelled", slog.Int("registration_id", result.CancelledID))
	data := map[string]any{
		"cancelled_id": result.CancelledID,
		"was_status":   result.WasStatus,
	}
	if result.PromotedID != nil {
		data["promoted_registration_id"] = *result.PromotedID
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
