package verify

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

	authservice "github.com/magabrotheeeer/event-manager/internal/services/auth"
)

// MockService реализует интерфейс verify.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ConfirmEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func TestVerifyHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		token          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешное подтверждение",
			token: "valid-token",
			setupMock: func(m *MockService) {
				m.On("ConfirmEmail", mock.Anything, "valid-token").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `email confirmed, you can now login`,
		},
		{
			name:  "почта уже подтверждена",
			token: "used-token",
			setupMock: func(m *MockService) {
				m.On("ConfirmEmail", mock.Anything, "used-token").
					Return(authservice.ErrAlreadyConfirmed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"email already confirmed"`,
		},
		{
			name:  "невалидный токен",
			token: "garbage",
			setupMock: func(m *MockService) {
				m.On("ConfirmEmail", mock.Anything, "garbage").
					Return(authservice.ErrInvalidConfirmationToken)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid or expired confirmation token"`,
		},
		{
			name:  "сбой хранилища возвращает 500",
			token: "valid-token",
			setupMock: func(m *MockService) {
				m.On("ConfirmEmail", mock.Anything, "valid-token").
					Return(errors.New("pq: connection reset by peer"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not confirm email"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/auth/verify-email/"+tt.token, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("token", tt.token)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
