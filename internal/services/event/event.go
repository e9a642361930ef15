// Package services содержит бизнес-логику каталога событий:
// создание, чтение с кешированием, частичное обновление и удаление
// с проверкой прав организатора.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-manager/internal/models"
)

// Ошибки уровня сервиса каталога событий.
var (
	// ErrForbidden возвращается, когда изменять событие пытается
	// не организатор и не администратор.
	ErrForbidden = errors.New("operation allowed only for organizer or admin")
	// ErrInvalidDates возвращается при нераспознанных или
	// противоречивых датах события.
	ErrInvalidDates = errors.New("invalid event dates")
)

// defaultMaxParticipants используется, если организатор не указал лимит.
const defaultMaxParticipants = 100

// EventRepository определяет методы для работы с событиями в хранилище.
type EventRepository interface {
	// CreateEvent добавляет новое событие и возвращает его ID.
	CreateEvent(ctx context.Context, event models.Event) (int, error)
	// ReadEvent возвращает событие по ID.
	ReadEvent(ctx context.Context, id int) (*models.Event, error)
	// ListEvents возвращает список событий с пагинацией.
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error)
	// UpdateEvent применяет частичное обновление, возвращает число изменённых строк.
	UpdateEvent(ctx context.Context, id int, patch models.EventPatch) (int, error)
	// RemoveEvent удаляет событие по ID, возвращает число удалённых строк.
	RemoveEvent(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventService реализует бизнес-логику каталога событий.
type EventService struct {
	repo  EventRepository
	cache Cache
	log   *slog.Logger
}

// NewEventService создает новый экземпляр EventService.
func NewEventService(repo EventRepository, cache Cache, log *slog.Logger) *EventService {
	return &EventService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новое событие. Вызывающий становится организатором,
// событие сразу открыто для регистрации.
func (s *EventService) Create(ctx context.Context, organizerUID string, req models.CreateEventRequest) (int, error) {
	startDatetime, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		return 0, fmt.Errorf("%w: start_datetime is not RFC3339", ErrInvalidDates)
	}
	endDatetime, err := time.Parse(time.RFC3339, req.EndDatetime)
	if err != nil {
		return 0, fmt.Errorf("%w: end_datetime is not RFC3339", ErrInvalidDates)
	}
	if !endDatetime.After(startDatetime) {
		return 0, fmt.Errorf("%w: end_datetime must be later than start_datetime", ErrInvalidDates)
	}
	maxParticipants := defaultMaxParticipants
	if req.MaxParticipants != nil {
		maxParticipants = *req.MaxParticipants
	}

	event := models.Event{
		Title:           req.Title,
		Description:     req.Description,
		StartDatetime:   startDatetime,
		EndDatetime:     endDatetime,
		Location:        req.Location,
		MaxParticipants: maxParticipants,
		IsActive:        true,
		OrganizerUID:    organizerUID,
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new event", slog.Int("id", id), slog.String("organizer", organizerUID))
	return id, nil
}

// Read возвращает событие по ID, используя кеш или репозиторий.
func (s *EventService) Read(ctx context.Context, id int) (*models.Event, error) {
	var result *models.Event
	cacheKey := fmt.Sprintf("event:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read event from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ReadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache event", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// List возвращает список событий с пагинацией.
func (s *EventService) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	return s.repo.ListEvents(ctx, limit, offset)
}

// Update применяет частичное обновление события. Изменение доступно только
// организатору события и администраторам.
func (s *EventService) Update(ctx context.Context, id int, callerUID, callerRole string, req models.UpdateEventRequest) (int, error) {
	event, err := s.repo.ReadEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	if event.OrganizerUID != callerUID && callerRole != "admin" {
		return 0, ErrForbidden
	}

	patch := models.EventPatch{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		IsActive:        req.IsActive,
	}
	startDatetime := event.StartDatetime
	if req.StartDatetime != nil {
		parsed, err := time.Parse(time.RFC3339, *req.StartDatetime)
		if err != nil {
			return 0, fmt.Errorf("%w: start_datetime is not RFC3339", ErrInvalidDates)
		}
		patch.StartDatetime = &parsed
		startDatetime = parsed
	}
	endDatetime := event.EndDatetime
	if req.EndDatetime != nil {
		parsed, err := time.Parse(time.RFC3339, *req.EndDatetime)
		if err != nil {
			return 0, fmt.Errorf("%w: end_datetime is not RFC3339", ErrInvalidDates)
		}
		patch.EndDatetime = &parsed
		endDatetime = parsed
	}
	if !endDatetime.After(startDatetime) {
		return 0, fmt.Errorf("%w: end_datetime must be later than start_datetime", ErrInvalidDates)
	}

	count, err := s.repo.UpdateEvent(ctx, id, patch)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("event:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate event cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет событие вместе с его регистрациями (каскад в базе).
// Удаление доступно только организатору события и администраторам.
func (s *EventService) Remove(ctx context.Context, id int, callerUID, callerRole string) (int, error) {
	event, err := s.repo.ReadEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	if event.OrganizerUID != callerUID && callerRole != "admin" {
		return 0, ErrForbidden
	}

	count, err := s.repo.RemoveEvent(ctx, id)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("event:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate event cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.log.Info("removed event", slog.Int("id", id))
	return count, nil
}
