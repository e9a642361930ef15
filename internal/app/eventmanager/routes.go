// Package eventmanager предоставляет маршруты для основного приложения.
package eventmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/event-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/auth/verify"
	eventcreate "github.com/magabrotheeeer/event-manager/internal/http/handlers/event/create"
	eventlist "github.com/magabrotheeeer/event-manager/internal/http/handlers/event/list"
	eventread "github.com/magabrotheeeer/event-manager/internal/http/handlers/event/read"
	eventremove "github.com/magabrotheeeer/event-manager/internal/http/handlers/event/remove"
	eventupdate "github.com/magabrotheeeer/event-manager/internal/http/handlers/event/update"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/registration/cancel"
	"github.com/magabrotheeeer/event-manager/internal/http/handlers/registration/participants"
	regcreate "github.com/magabrotheeeer/event-manager/internal/http/handlers/registration/register"
	"github.com/magabrotheeeer/event-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/event-manager/internal/services/auth"
	eventservice "github.com/magabrotheeeer/event-manager/internal/services/event"
	registrationservice "github.com/magabrotheeeer/event-manager/internal/services/registration"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.AuthService,
	eventService *eventservice.EventService,
	registrationService *registrationservice.RegistrationService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/auth/verify-email/{token}", verify.New(logger, authService).ServeHTTP)

		// Каталог событий доступен без аутентификации только на чтение
		r.Get("/events", eventlist.New(logger, eventService).ServeHTTP)
		r.Get("/events/{id}", eventread.New(logger, eventService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/events", eventcreate.New(logger, eventService).ServeHTTP)
			r.Put("/events/{id}", eventupdate.New(logger, eventService).ServeHTTP)
			r.Delete("/events/{id}", eventremove.New(logger, eventService).ServeHTTP)
			r.Post("/events/{id}/register", regcreate.New(logger, registrationService).ServeHTTP)
			r.Delete("/events/{id}/register", cancel.New(logger, registrationService).ServeHTTP)
			r.Get("/events/{id}/participants", participants.New(logger, registrationService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
