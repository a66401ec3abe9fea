package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openlearn/openlearn-backend/services"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        services.ErrCourseNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "validation",
			err:        services.ErrInvalidDifficulty,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "must log in",
			err:        services.ErrMustLogIn,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "forbidden",
			err:        services.ErrNotAuthor,
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "enrollment gate keeps its own code",
			err:        services.ErrMustEnroll,
			wantStatus: http.StatusForbidden,
			wantCode:   "enrollment_required",
		},
		{
			name:       "not published",
			err:        services.ErrCourseNotPublished,
			wantStatus: http.StatusConflict,
			wantCode:   "not_published",
		},
		{
			name:       "conflict",
			err:        services.ErrDuplicateSlug,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "blob io",
			err:        services.ErrBlobUnavailable,
			wantStatus: http.StatusBadGateway,
			wantCode:   "blob_io",
		},
		{
			name:       "internal",
			err:        services.WrapInternal("boom", errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "unknown error falls back to internal",
			err:        errors.New("mystery"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			HandleServiceError(rec, tt.err, logger)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestHandleServiceErrorInternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleServiceError(rec, services.WrapInternal("failed to load course", errors.New("pq: connection refused")), zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
