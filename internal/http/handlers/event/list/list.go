// Package list реализует HTTP-обработчик получения списка событий с пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler обрабатывает запросы на получение списка событий.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики списка событий
}

// Service описывает интерфейс бизнес-логики списка событий.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Event, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// parsePagination разбирает query-параметры limit и offset,
// подставляя безопасные значения по умолчанию.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxLimit {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// ServeHTTP godoc
// @Summary Получить список событий
// @Description Возвращает события с пагинацией через limit и offset.
// @Tags Events
// @Produce  json
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список событий"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении списка"
// @Router /events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := parsePagination(r)

	res, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list events"))
		return
	}

	log.Info("success to list events", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"events": res,
		"count":  len(res),
	}))
}
