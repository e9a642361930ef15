// Package eventmanager собирает HTTP-сервис управления событиями:
// хранилище, миграции, кеш, брокер сообщений, бизнес-сервисы и маршруты.
package eventmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/event-manager/internal/cache"
	"github.com/magabrotheeeer/event-manager/internal/config"
	"github.com/magabrotheeeer/event-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/event-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-manager/internal/migrations"
	authservice "github.com/magabrotheeeer/event-manager/internal/services/auth"
	eventservice "github.com/magabrotheeeer/event-manager/internal/services/event"
	"github.com/magabrotheeeer/event-manager/internal/services/notifier"
	registrationservice "github.com/magabrotheeeer/event-manager/internal/services/registration"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение: подключает все зависимости, применяет миграции
// и настраивает маршрутизацию.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	notifierService := notifier.New(ch, logger)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTTL)

	authService := authservice.NewAuthService(db, jwtMaker, notifierService, cfg.PublicURL, logger)
	eventService := eventservice.NewEventService(db, cacheRedis, logger)
	registrationService := registrationservice.NewRegistrationService(db, notifierService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, eventService, registrationService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close RabbitMQ channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close RabbitMQ connection", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
