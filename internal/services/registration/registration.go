// Package services содержит бизнес-логику движка регистраций: запись на
// событие с контролем вместимости, отмену с повышением из листа ожидания
// и список участников для организатора.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/event-manager/internal/lib/sl"
	"github.com/magabrotheeeer/event-manager/internal/models"
)

// ErrForbidden возвращается, когда список участников запрашивает
// не организатор и не администратор.
var ErrForbidden = errors.New("operation allowed only for organizer or admin")

// ErrInvalidStatusFilter возвращается при неизвестном значении фильтра статуса.
var ErrInvalidStatusFilter = errors.New("unknown status filter")

var registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "event_registrations_total",
	Help: "Registration attempts by resulting status.",
}, []string{"status"})

// RegistrationRepository определяет транзакционные операции движка в хранилище.
type RegistrationRepository interface {
	// RegisterForEvent создает регистрацию со статусом confirmed или waitlist.
	RegisterForEvent(ctx context.Context, eventID int, userUID string) (*models.Registration, error)
	// CancelRegistration отменяет активную регистрацию и повышает лист ожидания.
	CancelRegistration(ctx context.Context, eventID int, userUID string) (*models.CancelResult, *models.Participant, error)
	// ListParticipants возвращает участников события в порядке регистрации.
	ListParticipants(ctx context.Context, eventID int, statusFilter string, limit, offset int) ([]*models.Participant, error)
	// ReadEvent возвращает событие по ID.
	ReadEvent(ctx context.Context, id int) (*models.Event, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Notifier описывает асинхронную отправку писем.
type Notifier interface {
	Dispatch(msg models.EmailMessage)
}

// RegistrationService реализует бизнес-логику движка регистраций.
type RegistrationService struct {
	repo     RegistrationRepository
	notifier Notifier
	log      *slog.Logger
}

// NewRegistrationService создает новый экземпляр RegistrationService.
func NewRegistrationService(repo RegistrationRepository, notifier Notifier, log *slog.Logger) *RegistrationService {
	return &RegistrationService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Register записывает пользователя на событие. Пока есть свободные места,
// регистрация подтверждается сразу, иначе попадает в лист ожидания.
// Письмо с результатом отправляется асинхронно после коммита и не влияет
// на исход операции.
func (s *RegistrationService) Register(ctx context.Context, eventID int, userUID string) (*models.Registration, error) {
	reg, err := s.repo.RegisterForEvent(ctx, eventID, userUID)
	if err != nil {
		return nil, err
	}
	registrationsTotal.WithLabelValues(reg.Status).Inc()
	s.log.Info("created registration",
		slog.Int("id", reg.ID),
		slog.Int("event_id", eventID),
		slog.String("status", reg.Status))

	s.notifyRegistered(ctx, reg)
	return reg, nil
}

func (s *RegistrationService) notifyRegistered(ctx context.Context, reg *models.Registration) {
	user, err := s.repo.GetUser(ctx, reg.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	event, err := s.repo.ReadEvent(ctx, reg.EventID)
	if err != nil {
		s.log.Warn("failed to load event for notification", sl.Err(err))
		return
	}

	var subject, body string
	if reg.Status == models.StatusConfirmed {
		subject = fmt.Sprintf("Регистрация на %s подтверждена", event.Title)
		body = fmt.Sprintf("Здравствуйте, %s!\n\nВаша регистрация на событие %s подтверждена. Начало: %s.",
			user.Username, event.Title, event.StartDatetime.Format("02.01.2006 15:04"))
	} else {
		subject = fmt.Sprintf("Вы в листе ожидания события %s", event.Title)
		body = fmt.Sprintf("Здравствуйте, %s!\n\nСвободных мест на событие %s сейчас нет, вы добавлены в лист ожидания. Мы сообщим, когда место освободится.",
			user.Username, event.Title)
	}
	s.notifier.Dispatch(models.EmailMessage{
		Kind:     "registration",
		Email:    user.Email,
		Username: user.Username,
		Subject:  subject,
		Body:     body,
	})
}

// Cancel отменяет активную регистрацию пользователя. Если отменена
// подтверждённая регистрация, движок повышает старейшую запись листа
// ожидания, а повышенный участник получает письмо.
func (s *RegistrationService) Cancel(ctx context.Context, eventID int, userUID string) (*models.CancelResult, error) {
	result, promoted, err := s.repo.CancelRegistration(ctx, eventID, userUID)
	if err != nil {
		return nil, err
	}
	s.log.Info("cancelled registration",
		slog.Int("id", result.CancelledID),
		slog.Int("event_id", eventID),
		slog.String("was_status", result.WasStatus))

	if promoted != nil {
		s.log.Info("promoted registration from waitlist",
			slog.Int("id", promoted.RegistrationID),
			slog.Int("event_id", eventID))
		event, err := s.repo.ReadEvent(ctx, eventID)
		if err != nil {
			s.log.Warn("failed to load event for promotion notification", sl.Err(err))
			return result, nil
		}
		s.notifier.Dispatch(models.EmailMessage{
			Kind:     "promotion",
			Email:    promoted.Email,
			Username: promoted.Username,
			Subject:  fmt.Sprintf("Место на %s освободилось", event.Title),
			Body: fmt.Sprintf("Здравствуйте, %s!\n\nВаша регистрация на событие %s подтверждена: освободилось место. Начало: %s.",
				promoted.Username, event.Title, event.StartDatetime.Format("02.01.2006 15:04")),
		})
	}
	return result, nil
}

// ListParticipants возвращает участников события в порядке регистрации.
// Список доступен только организатору события и администраторам.
// Отменённые регистрации показываются только по явному фильтру.
func (s *RegistrationService) ListParticipants(ctx context.Context, eventID int, callerUID, callerRole, statusFilter string, limit, offset int) ([]*models.Participant, error) {
	event, err := s.repo.ReadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerUID != callerUID && callerRole != "admin" {
		return nil, ErrForbidden
	}

	switch statusFilter {
	case "", models.StatusConfirmed, models.StatusWaitlist, models.StatusCancelled:
	default:
		return nil, ErrInvalidStatusFilter
	}

	return s.repo.ListParticipants(ctx, eventID, statusFilter, limit, offset)
}
