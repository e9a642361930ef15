// Package refresh реализует HTTP-обработчик обновления access-токена
// по действующему refresh-токену.
package refresh

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
)

// Handler обрабатывает запросы на обновление access-токена.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики обновления токена
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
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
// @Summary Обновить access-токен
// @Description Проверяет refresh-токен и выдает новый access-токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RefreshRequest true "Refresh-токен"
// @Success 200 {object} map[string]any "Новый access-токен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Невалидный или истекший refresh-токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RefreshRequest
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

	token, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		log.Error("failed to refresh token", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired refresh token"))
		return
	}

	log.Info("access token refreshed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
