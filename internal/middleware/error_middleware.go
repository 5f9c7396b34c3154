package middleware

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
	"github.com/yigit/assessai/internal/pkg/dberrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// classifyError maps an error onto an HTTP status and error code
func classifyError(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrCSRFTokenMismatch):
		return http.StatusForbidden, dto.ErrorCodeCSRFMismatch
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeAccountDisabled
	case errors.Is(err, apperrors.ErrMarkingDisabled):
		return http.StatusForbidden, dto.ErrorCodeMarkingBlocked
	case apperrors.Is(err, apperrors.ErrPermissionDenied, apperrors.ErrRegistrationDisabled):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case apperrors.Is(err, apperrors.ErrTokenExpired, auth.ErrExpiredToken):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case apperrors.Is(err, apperrors.ErrTokenInvalid, auth.ErrInvalidToken, auth.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.ErrorCodeTokenNotFound
	case errors.Is(err, apperrors.ErrFileRequired):
		return http.StatusBadRequest, dto.ErrorCodeFileRequired
	case errors.Is(err, apperrors.ErrFileTypeNotAllowed):
		return http.StatusBadRequest, dto.ErrorCodeFileType
	case errors.Is(err, apperrors.ErrFileTooLarge):
		return http.StatusBadRequest, dto.ErrorCodeFileTooLarge
	case errors.Is(err, apperrors.ErrInvalidEmail):
		return http.StatusBadRequest, dto.ErrorCodeInvalidEmail
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return http.StatusBadRequest, dto.ErrorCodeInvalidPassword
	case apperrors.Is(err, apperrors.ErrInvalidCategory, apperrors.ErrInvalidLayoutFormat):
		return http.StatusBadRequest, dto.ErrorCodeResourceInvalid
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists, apperrors.ErrEmailAlreadyExists, apperrors.ErrUsernameExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case apperrors.IsConflict(err):
		return http.StatusConflict, dto.ErrorCodeResourceConflict
	case dberrors.IsDatabaseError(err):
		return http.StatusInternalServerError, dto.ErrorCodeDatabaseError
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// errorMessage prefers the message of a CustomError, then the error text
func errorMessage(err error) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// NewAPIErrorResponse builds the error envelope and status for err
func NewAPIErrorResponse(err error) (int, *dto.ErrorResponse) {
	status, code := classifyError(err)

	var detail *dto.ErrorDetail
	if status == http.StatusInternalServerError {
		detail = dto.NewErrorDetail(code, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
		if gin.Mode() != gin.ReleaseMode {
			detail = detail.WithDetails(err.Error())
		}
	} else {
		detail = dto.NewErrorDetail(code, errorMessage(err))
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Details != nil {
			detail = detail.WithDetails(customErr.Details)
		}
	}
	return status, dto.NewErrorResponse(detail)
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, resp := NewAPIErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
