package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
)

func TestNewAPIErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
		wantMsg    string
	}{
		{"rubric missing", apperrors.ErrRubricNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Rubric not found for this assessment"},
		{"no marked work", fmt.Errorf("analytics: %w", apperrors.ErrNoMarkedWork), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"forbidden", apperrors.NewForbiddenError("You do not own this assessment"), http.StatusForbidden, dto.ErrorCodeForbidden, "You do not own this assessment"},
		{"registration closed", apperrors.ErrRegistrationDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, ""},
		{"marking disabled", apperrors.ErrMarkingDisabled, http.StatusForbidden, dto.ErrorCodeMarkingBlocked, ""},
		{"account disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, ""},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, ""},
		{"validation", fmt.Errorf("%w: title is required", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed: title is required"},
		{"invalid layout", apperrors.ErrInvalidLayoutFormat, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, ""},
		{"file type", apperrors.ErrFileTypeNotAllowed, http.StatusBadRequest, dto.ErrorCodeFileType, ""},
		{"file size", apperrors.ErrFileTooLarge, http.StatusBadRequest, dto.ErrorCodeFileTooLarge, ""},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, ""},
		{"already marked", apperrors.ErrWorkAlreadyMarked, http.StatusConflict, dto.ErrorCodeResourceConflict, ""},
		{"database", fmt.Errorf("error listing marks: %w", &pgconn.PgError{Code: "57P01"}), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Internal server error"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := NewAPIErrorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}
}

func TestHandleAPIError_WritesEnvelope(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		HandleAPIError(c, apperrors.ErrAssessmentNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Assessment not found", resp.Error.Message)
}
