// Package read реализует HTTP-обработчик получения события по ID.
//
// Handler извлекает ID из URL-параметров, вызывает бизнес-логику чтения
// события и возвращает его данные в JSON-формате.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// Handler обрабатывает запросы на получение события по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики чтения события
}

// Service описывает интерфейс бизнес-логики чтения события.
type Service interface {
	Read(ctx context.Context, id int) (*models.Event, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить событие по ID
// @Description Возвращает данные события по идентификатору.
// @Tags Events
// @Produce  json
// @Param id path int true "ID события"
// @Success 200 {object} map[string]any "Данные события"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении события"
// @Router /events/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.read"

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

	res, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			log.Error("event not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
			return
		}
		log.Error("failed to read event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read event"))
		return
	}

	log.Info("success to read event", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"event": res,
	}))
}
