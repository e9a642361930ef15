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

func (m *RepoMock) RegisterForEvent(ctx context.Context, eventID int, userUID string) (*models.Registration, error) {
	args := m.Called(ctx, eventID, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *RepoMock) CancelRegistration(ctx context.Context, eventID int, userUID string) (*models.CancelResult, *models.Participant, error) {
	args := m.Called(ctx, eventID, userUID)
	var result *models.CancelResult
	var promoted *models.Participant
	if args.Get(0) != nil {
		result = args.Get(0).(*models.CancelResult)
	}
	if args.Get(1) != nil {
		promoted = args.Get(1).(*models.Participant)
	}
	return result, promoted, args.Error(2)
}

func (m *RepoMock) ListParticipants(ctx context.Context, eventID int, statusFilter string, limit, offset int) ([]*models.Participant, error) {
	args := m.Called(ctx, eventID, statusFilter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *RepoMock) ReadEvent(ctx context.Context, id int) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Dispatch(msg models.EmailMessage) {
	m.Called(msg)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testEvent() *models.Event {
	return &models.Event{
		ID:              7,
		Title:           "GopherCon",
		StartDatetime:   time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		EndDatetime:     time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		MaxParticipants: 2,
		IsActive:        true,
		OrganizerUID:    "org-uid",
	}
}

func testUser() *models.User {
	return &models.User{
		UID:      "user-uid",
		Username: "gopher",
		Email:    "gopher@example.com",
		Role:     "user",
	}
}

func TestRegistrationService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, n *NotifierMock)
		wantStatus string
		wantErr    error
	}{
		{
			name: "подтверждённая регистрация при наличии мест",
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(&models.Registration{ID: 1, EventID: 7, UserUID: "user-uid", Status: models.StatusConfirmed}, nil).Once()
				r.On("GetUser", mock.Anything, "user-uid").Return(testUser(), nil).Once()
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
				n.On("Dispatch", mock.MatchedBy(func(msg models.EmailMessage) bool {
					return msg.Kind == "registration" && msg.Email == "gopher@example.com"
				})).Once()
			},
			wantStatus: models.StatusConfirmed,
		},
		{
			name: "лист ожидания при заполненном событии",
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(&models.Registration{ID: 3, EventID: 7, UserUID: "user-uid", Status: models.StatusWaitlist}, nil).Once()
				r.On("GetUser", mock.Anything, "user-uid").Return(testUser(), nil).Once()
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
				n.On("Dispatch", mock.MatchedBy(func(msg models.EmailMessage) bool {
					return msg.Kind == "registration"
				})).Once()
			},
			wantStatus: models.StatusWaitlist,
		},
		{
			name: "повторная активная регистрация запрещена",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(nil, repository.ErrAlreadyRegistered).Once()
			},
			wantErr: repository.ErrAlreadyRegistered,
		},
		{
			name: "событие не найдено",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(nil, repository.ErrEventNotFound).Once()
			},
			wantErr: repository.ErrEventNotFound,
		},
		{
			name: "событие закрыто для регистрации",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(nil, repository.ErrEventInactive).Once()
			},
			wantErr: repository.ErrEventInactive,
		},
		{
			name: "сбой загрузки пользователя не ломает регистрацию",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("RegisterForEvent", mock.Anything, 7, "user-uid").
					Return(&models.Registration{ID: 5, EventID: 7, UserUID: "user-uid", Status: models.StatusConfirmed}, nil).Once()
				r.On("GetUser", mock.Anything, "user-uid").Return(nil, errors.New("db error")).Once()
			},
			wantStatus: models.StatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			notifier := new(NotifierMock)
			tt.setupMocks(repo, notifier)

			svc := NewRegistrationService(repo, notifier, newNoopLogger())
			reg, err := svc.Register(context.Background(), 7, "user-uid")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, reg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, reg.Status)
			}
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestRegistrationService_Cancel(t *testing.T) {
	promotedID := 4

	tests := []struct {
		name         string
		setupMocks   func(r *RepoMock, n *NotifierMock)
		wantPromoted *int
		wantErr      error
	}{
		{
			name: "отмена подтверждённой регистрации повышает лист ожидания",
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				r.On("CancelRegistration", mock.Anything, 7, "user-uid").
					Return(
						&models.CancelResult{CancelledID: 2, WasStatus: models.StatusConfirmed, PromotedID: &promotedID},
						&models.Participant{RegistrationID: 4, Username: "next", Email: "next@example.com", Status: models.StatusConfirmed},
						nil,
					).Once()
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
				n.On("Dispatch", mock.MatchedBy(func(msg models.EmailMessage) bool {
					return msg.Kind == "promotion" && msg.Email == "next@example.com"
				})).Once()
			},
			wantPromoted: &promotedID,
		},
		{
			name: "отмена записи из листа ожидания никого не повышает",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("CancelRegistration", mock.Anything, 7, "user-uid").
					Return(&models.CancelResult{CancelledID: 3, WasStatus: models.StatusWaitlist}, nil, nil).Once()
			},
		},
		{
			name: "активная регистрация не найдена",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("CancelRegistration", mock.Anything, 7, "user-uid").
					Return(nil, nil, repository.ErrRegistrationNotFound).Once()
			},
			wantErr: repository.ErrRegistrationNotFound,
		},
		{
			name: "сбой загрузки события не ломает отмену",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("CancelRegistration", mock.Anything, 7, "user-uid").
					Return(
						&models.CancelResult{CancelledID: 2, WasStatus: models.StatusConfirmed, PromotedID: &promotedID},
						&models.Participant{RegistrationID: 4, Username: "next", Email: "next@example.com"},
						nil,
					).Once()
				r.On("ReadEvent", mock.Anything, 7).Return(nil, errors.New("db error")).Once()
			},
			wantPromoted: &promotedID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			notifier := new(NotifierMock)
			tt.setupMocks(repo, notifier)

			svc := NewRegistrationService(repo, notifier, newNoopLogger())
			result, err := svc.Cancel(context.Background(), 7, "user-uid")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				if tt.wantPromoted != nil {
					assert.NotNil(t, result.PromotedID)
					assert.Equal(t, *tt.wantPromoted, *result.PromotedID)
				} else {
					assert.Nil(t, result.PromotedID)
				}
			}
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestRegistrationService_ListParticipants(t *testing.T) {
	participantsList := []*models.Participant{
		{RegistrationID: 1, Username: "first", Status: models.StatusConfirmed},
		{RegistrationID: 2, Username: "second", Status: models.StatusWaitlist},
	}

	tests := []struct {
		name         string
		callerUID    string
		callerRole   string
		statusFilter string
		setupMocks   func(r *RepoMock)
		wantCount    int
		wantErr      error
	}{
		{
			name:       "организатор видит участников",
			callerUID:  "org-uid",
			callerRole: "user",
			setupMocks: func(r *RepoMock) {
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
				r.On("ListParticipants", mock.Anything, 7, "", 100, 0).Return(participantsList, nil).Once()
			},
			wantCount: 2,
		},
		{
			name:       "администратор видит участников чужого события",
			callerUID:  "someone-else",
			callerRole: "admin",
			setupMocks: func(r *RepoMock) {
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
				r.On("ListParticipants", mock.Anything, 7, "", 100, 0).Return(participantsList, nil).Once()
			},
			wantCount: 2,
		},
		{
			name:       "обычный пользователь не имеет доступа",
			callerUID:  "someone-else",
			callerRole: "user",
			setupMocks: func(r *RepoMock) {
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
			},
			wantErr: ErrForbidden,
		},
		{
			name:         "неизвестный фильтр статуса",
			callerUID:    "org-uid",
			callerRole:   "user",
			statusFilter: "pending",
			setupMocks: func(r *RepoMock) {
				r.On("ReadEvent", mock.Anything, 7).Return(testEvent(), nil).Once()
			},
			wantErr: ErrInvalidStatusFilter,
		},
		{
			name:       "событие не найдено",
			callerUID:  "org-uid",
			callerRole: "user",
			setupMocks: func(r *RepoMock) {
				r.On("ReadEvent", mock.Anything, 7).Return(nil, repository.ErrEventNotFound).Once()
			},
			wantErr: repository.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := NewRegistrationService(repo, new(NotifierMock), newNoopLogger())
			res, err := svc.ListParticipants(context.Background(), 7, tt.callerUID, tt.callerRole, tt.statusFilter, 100, 0)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Len(t, res, tt.wantCount)
			}
			repo.AssertExpectations(t)
		})
	}
}
