// Package notifier реализует асинхронную отправку писем через RabbitMQ.
//
// Dispatch публикует сообщение в обменник notifications и возвращает
// управление немедленно: путь обработки HTTP-запроса не ждёт доставки,
// ошибки публикации только логируются.
package notifier

import (
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/event-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
)

// Службы ядра вызывают Dispatch после коммита транзакции, поэтому сбой
// брокера не может откатить регистрацию или создание пользователя.

// Service публикует письма в очередь воркера отправки.
type Service struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// New создает новый экземпляр Service.
func New(ch *amqp.Channel, log *slog.Logger) *Service {
	return &Service{ch: ch, log: log}
}

// Dispatch отправляет письмо в очередь в отдельной горутине.
// Ошибки публикации не возвращаются вызывающему.
func (s *Service) Dispatch(msg models.EmailMessage) {
	go func() {
		if err := rabbitmq.PublishMessage(s.ch, rabbitmq.NotificationsExchange, "email", msg); err != nil {
			s.log.Error("failed to publish email message",
				slog.String("kind", msg.Kind),
				slog.String("email", msg.Email),
				sl.Err(err))
			return
		}
		s.log.Info("email message published",
			slog.String("kind", msg.Kind),
			slog.String("email", msg.Email))
	}()
}
