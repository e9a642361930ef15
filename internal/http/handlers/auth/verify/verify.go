// Package verify реализует HTTP-обработчик подтверждения электронной почты
// по токену из письма регистрации.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-manager/internal/http/response"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	authservice "github.com/magabrotheeeer/event-manager/internal/services/auth"
)

// Handler обрабатывает запросы на подтверждение почты.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подтверждения почты
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	ConfirmEmail(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить электронную почту
// @Description Активирует учётную запись по токену из письма подтверждения.
// @Tags Auth
// @Produce  json
// @Param token path string true "Токен подтверждения"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Невалидный токен или почта уже подтверждена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при активации"
// @Router /auth/verify-email/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := chi.URLParam(r, "token")
	if token == "" {
		log.Error("missing confirmation token")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing confirmation token"))
		return
	}

	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, authservice.ErrAlreadyConfirmed):
			log.Error("email already confirmed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email already confirmed"))
		case errors.Is(err, authservice.ErrInvalidConfirmationToken):
			log.Error("invalid confirmation token", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired confirmation token"))
		default:
			log.Error("failed to confirm email", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm email"))
		}
		return
	}

	log.Info("email confirmed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email confirmed, you can now login",
	}))
}
