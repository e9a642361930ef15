package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-manager/internal/models"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateEvent(ctx context.Context, event models.Event) (int, error) {
	args := m.Called(ctx, event)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadEvent(ctx context.Context, id int) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *RepoMock) UpdateEvent(ctx context.Context, id int, patch models.EventPatch) (int, error) {
	args := m.Called(ctx, id, patch)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveEvent(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func storedEvent() *models.Event {
	return &models.Event{
		ID:              11,
		Title:           "GopherCon",
		StartDatetime:   time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		EndDatetime:     time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		MaxParticipants: 50,
		IsActive:        true,
		OrganizerUID:    "org-uid",
	}
}

func TestEventService_Create(t *testing.T) {
	limit := 25

	tests := []struct {
		name       string
		req        models.CreateEventRequest
		setupMocks func(r *RepoMock)
		wantID     int
		wantErr    bool
	}{
		{
			name: "успешное создание с лимитом",
			req: models.CreateEventRequest{
				Title:           "GopherCon",
				StartDatetime:   "2026-10-01T10:00:00Z",
				EndDatetime:     "2026-10-01T18:00:00Z",
				MaxParticipants: &limit,
			},
			setupMocks: func(r *RepoMock) {
				r.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
					return e.Title == "GopherCon" && e.MaxParticipants == 25 && e.IsActive && e.OrganizerUID == "org-uid"
				})).Return(11, nil).Once()
			},
			wantID: 11,
		},
		{
			name: "лимит по умолчанию, если не указан",
			req: models.CreateEventRequest{
				Title:         "Meetup",
				StartDatetime: "2026-10-01T10:00:00Z",
				EndDatetime:   "2026-10-01T12:00:00Z",
			},
			setupMocks: func(r *RepoMock) {
				r.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
					return e.MaxParticipants == defaultMaxParticipants
				})).Return(12, nil).Once()
			},
			wantID: 12,
		},
		{
			name: "некорректная дата начала",
			req: models.CreateEventRequest{
				Title:         "Meetup",
				StartDatetime: "01-10-2026",
				EndDatetime:   "2026-10-01T12:00:00Z",
			},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    true,
		},
		{
			name: "окончание раньше начала",
			req: models.CreateEventRequest{
				Title:         "Meetup",
				StartDatetime: "2026-10-01T12:00:00Z",
				EndDatetime:   "2026-10-01T10:00:00Z",
			},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := NewEventService(repo, new(CacheMock), newNoopLogger())
			id, err := svc.Create(context.Background(), "org-uid", tt.req)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDates)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestEventService_Read(t *testing.T) {
	t.Run("промах кеша идёт в репозиторий и кеширует результат", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "event:11", mock.Anything).Return(false, nil).Once()
		repo.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
		cache.On("Set", "event:11", mock.Anything, time.Hour).Return(nil).Once()

		svc := NewEventService(repo, cache, newNoopLogger())
		res, err := svc.Read(context.Background(), 11)

		assert.NoError(t, err)
		assert.Equal(t, "GopherCon", res.Title)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("попадание в кеш не трогает репозиторий", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "event:11", mock.Anything).Return(true, nil).Once()

		svc := NewEventService(repo, cache, newNoopLogger())
		_, err := svc.Read(context.Background(), 11)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "ReadEvent", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("событие не найдено", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "event:404", mock.Anything).Return(false, nil).Once()
		repo.On("ReadEvent", mock.Anything, 404).Return(nil, repository.ErrEventNotFound).Once()

		svc := NewEventService(repo, cache, newNoopLogger())
		_, err := svc.Read(context.Background(), 404)

		assert.ErrorIs(t, err, repository.ErrEventNotFound)
	})
}

func TestEventService_Update(t *testing.T) {
	newTitle := "GopherCon EU"
	badEnd := "2026-10-01T09:00:00Z"

	tests := []struct {
		name       string
		callerUID  string
		callerRole string
		req        models.UpdateEventRequest
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:       "организатор обновляет название",
			callerUID:  "org-uid",
			callerRole: "user",
			req:        models.UpdateEventRequest{Title: &newTitle},
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
				r.On("UpdateEvent", mock.Anything, 11, mock.MatchedBy(func(p models.EventPatch) bool {
					return p.Title != nil && *p.Title == newTitle
				})).Return(1, nil).Once()
				c.On("Invalidate", "event:11").Return(nil).Once()
			},
		},
		{
			name:       "администратор обновляет чужое событие",
			callerUID:  "someone-else",
			callerRole: "admin",
			req:        models.UpdateEventRequest{Title: &newTitle},
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
				r.On("UpdateEvent", mock.Anything, 11, mock.Anything).Return(1, nil).Once()
				c.On("Invalidate", "event:11").Return(nil).Once()
			},
		},
		{
			name:       "чужой пользователь получает отказ",
			callerUID:  "someone-else",
			callerRole: "user",
			req:        models.UpdateEventRequest{Title: &newTitle},
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
			},
			wantErr: ErrForbidden,
		},
		{
			name:       "новое окончание раньше старого начала",
			callerUID:  "org-uid",
			callerRole: "user",
			req:        models.UpdateEventRequest{EndDatetime: &badEnd},
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
			},
			wantErr: ErrInvalidDates,
		},
		{
			name:       "событие не найдено",
			callerUID:  "org-uid",
			callerRole: "user",
			req:        models.UpdateEventRequest{Title: &newTitle},
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("ReadEvent", mock.Anything, 11).Return(nil, repository.ErrEventNotFound).Once()
			},
			wantErr: repository.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := NewEventService(repo, cache, newNoopLogger())
			_, err := svc.Update(context.Background(), 11, tt.callerUID, tt.callerRole, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestEventService_Remove(t *testing.T) {
	t.Run("организатор удаляет событие", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
		repo.On("RemoveEvent", mock.Anything, 11).Return(1, nil).Once()
		cache.On("Invalidate", "event:11").Return(nil).Once()

		svc := NewEventService(repo, cache, newNoopLogger())
		count, err := svc.Remove(context.Background(), 11, "org-uid", "user")

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("чужой пользователь получает отказ", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()

		svc := NewEventService(repo, new(CacheMock), newNoopLogger())
		_, err := svc.Remove(context.Background(), 11, "someone-else", "user")

		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "RemoveEvent", mock.Anything, mock.Anything)
	})

	t.Run("ошибка инвалидации кеша не ломает удаление", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("ReadEvent", mock.Anything, 11).Return(storedEvent(), nil).Once()
		repo.On("RemoveEvent", mock.Anything, 11).Return(1, nil).Once()
		cache.On("Invalidate", "event:11").Return(errors.New("redis down")).Once()

		svc := NewEventService(repo, cache, newNoopLogger())
		count, err := svc.Remove(context.Background(), 11, "org-uid", "user")

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
