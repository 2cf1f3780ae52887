package token

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ExchangeSecret(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func TestTokenHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockErr    error
		mockToken  string
		callsMock  bool
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"username":"alice","confirmation_code":"K7MQ2XPA"}`,
			mockToken:  "signed.jwt",
			callsMock:  true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong code",
			body:       `{"username":"alice","confirmation_code":"WRONG"}`,
			mockErr:    models.ErrAuthenticationFailed,
			callsMock:  true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown username is 401",
			body:       `{"username":"ghost","confirmation_code":"K7MQ2XPA"}`,
			mockErr:    models.ErrIdentityNotFound,
			callsMock:  true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing code",
			body:       `{"username":"alice"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ServiceMock{}
			if tt.callsMock {
				var req Request
				require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
				svc.On("ExchangeSecret", mock.Anything, req.Username, req.ConfirmationCode).
					Return(tt.mockToken, tt.mockErr).Once()
			}

			logs := &bytes.Buffer{}
			h := New(slog.New(slog.NewTextHandler(logs, nil)), svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"token":"signed.jwt"}`, rr.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rr.Body.String(), "detail")
			}
			assert.NotContains(t, logs.String(), "K7MQ2XPA")
			svc.AssertExpectations(t)
		})
	}
}

func TestRequest_LogValueRedactsCode(t *testing.T) {
	buf := &bytes.Buffer{}
	slog.New(slog.NewJSONHandler(buf, nil)).Info("x", slog.Any("request", Request{Username: "alice", ConfirmationCode: "SECRET12"}))
	assert.NotContains(t, buf.String(), "SECRET12")
	assert.Contains(t, buf.String(), "alice")
}
