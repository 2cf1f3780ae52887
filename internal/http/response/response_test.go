package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "field validation",
			err:        fmt.Errorf("content.CreateReview: %w", models.ErrInvalidScore),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"score":["score must be between 1 and 10"]}`,
		},
		{
			name:       "field scoped conflict",
			err:        fmt.Errorf("storage.CreateUser: %w", models.ErrDuplicateEmail),
			wantStatus: http.StatusConflict,
			wantBody:   `{"email":["a user with that email already exists"]}`,
		},
		{
			name:       "duplicate review",
			err:        models.ErrDuplicateReview,
			wantStatus: http.StatusConflict,
			wantBody:   `{"detail":"you have already reviewed this title"}`,
		},
		{
			name:       "not authenticated",
			err:        policy.ErrNotAuthenticated,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"detail":"Authentication credentials were not provided."}`,
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("content.DeleteReview: %w", policy.ErrPermissionDenied),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"detail":"You do not have permission to perform this action."}`,
		},
		{
			name:       "not found",
			err:        models.ErrTitleNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "internal",
			err:        errors.New("pq: connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			response.Error(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestPage(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	response.Page(rr, req, 2, []models.CatalogItem{{Name: "Drama", Slug: "drama"}})

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["results"], 1)
}
