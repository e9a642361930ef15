// Package participants реализует HTTP-обработчик получения списка
// участников события для организатора и администратора.
package participants

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
	registrationservice "github.com/magabrotheeeer/event-manager/internal/services/registration"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler обрабатывает запросы на получение списка участников события.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис движка регистраций
}

// Service описывает интерфейс движка регистраций.
type Service interface {
	ListParticipants(ctx context.Context, eventID int, callerUID, callerRole, statusFilter string, limit, offset int) ([]*models.Participant, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить список участников события
// @Description Возвращает участников в порядке регистрации. Доступно организатору события и администратору. Отменённые регистрации показываются только по явному фильтру status=cancelled.
// @Tags Registrations
// @Produce  json
// @Param id path int true "ID события"
// @Param status query string false "Фильтр статуса: confirmed, waitlist или cancelled"
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список участников"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или фильтр статуса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении списка"
// @Security BearerAuth
// @Router /events/{id}/participants [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.participants"

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

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	callerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	statusFilter := r.URL.Query().Get("status")
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxLimit {
			limit = v
		}
	}
	var offset int
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	res, err := h.service.ListParticipants(r.Context(), eventID, callerUID, callerRole, statusFilter, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			log.Error("event not found", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, registrationservice.ErrForbidden):
			log.Error("caller is not organizer or admin", slog.Int("event_id", eventID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only organizer or admin can list participants"))
		case errors.Is(err, registrationservice.ErrInvalidStatusFilter):
			log.Error("unknown status filter", slog.String("status", statusFilter))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown status filter"))
		default:
			log.Error("failed to list participants", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list participants"))
		}
		return
	}

	log.Info("success to list participants", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"participants": res,
		"count":        len(res),
	}))
}
