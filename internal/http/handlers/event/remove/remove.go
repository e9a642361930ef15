// Package remove реализует HTTP-обработчик удаления события.
//
// Handler извлекает ID из URL-параметров, проверяет права вызывающего
// (организатор или администратор) и удаляет событие вместе с регистрациями.
package remove

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
	eventservice "github.com/magabrotheeeer/event-manager/internal/services/event"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// Handler обрабатывает запросы на удаление событий.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики удаления событий
}

// Service описывает интерфейс бизнес-логики удаления события.
type Service interface {
	Remove(ctx context.Context, id int, callerUID, callerRole string) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить событие
// @Description Удаляет событие и все его регистрации. Доступно организатору и администратору.
// @Tags Events
// @Produce  json
// @Param id path int true "ID события"
// @Success 200 {object} map[string]any "Событие удалено"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении"
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.remove"

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

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	callerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	count, err := h.service.Remove(r.Context(), id, callerUID, callerRole)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			log.Error("event not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, eventservice.ErrForbidden):
			log.Error("caller is not organizer or admin", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only organizer or admin can remove event"))
		default:
			log.Error("failed to remove event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove event"))
		}
		return
	}

	log.Info("event removed", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": count,
	}))
}
