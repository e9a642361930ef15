package register

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-manager/internal/models"
	"github.com/magabrotheeeer/event-manager/internal/storage/repository"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, eventID int, userUID string) (*models.Registration, error) {
	args := m.Called(ctx, eventID, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		eventID        string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная регистрация с подтверждением",
			eventID: "7",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 7, "user-uid").
					Return(&models.Registration{ID: 1, Status: models.StatusConfirmed}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"confirmed"`,
		},
		{
			name:    "регистрация в лист ожидания",
			eventID: "7",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 7, "user-uid").
					Return(&models.Registration{ID: 2, Status: models.StatusWaitlist}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"waitlist"`,
		},
		{
			name:           "некорректный id в URL",
			eventID:        "abc",
			userUID:        "user-uid",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode id from url"`,
		},
		{
			name:           "нет uid в контексте",
			eventID:        "7",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "повторная активная регистрация",
			eventID: "7",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 7, "user-uid").
					Return(nil, repository.ErrAlreadyRegistered)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"active registration already exists"`,
		},
		{
			name:    "событие не найдено",
			eventID: "404",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 404, "user-uid").
					Return(nil, repository.ErrEventNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"event not found"`,
		},
		{
			name:    "событие закрыто для регистрации",
			eventID: "7",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 7, "user-uid").
					Return(nil, repository.ErrEventInactive)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"event is closed for registration"`,
		},
		{
			name:    "ошибка сервиса",
			eventID: "7",
			userUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, 7, "user-uid").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not register for event"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/events/"+tt.eventID+"/register", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.eventID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
