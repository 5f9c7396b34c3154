package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/assessai/internal/app/auth"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/app/models/dto"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
	// ContextCookieAuth is true when the token came from the session cookie
	ContextCookieAuth = "cookieAuth"
)

// UserLookup loads the current state of an authenticated user
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      UserLookup
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

func abortWith(c *gin.Context, status int, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message)
	if details != "" {
		errorDetail = errorDetail.WithDetails(details)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// JWTAuth middleware for JWT token validation. The token is read from the
// Authorization header or, for browser sessions, the access_token cookie.
// Cookie sessions must echo the csrf_token cookie in the X-CSRF-Token header
// on state changing requests.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		fromCookie := false

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			token, err := auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "Invalid token format")
				return
			}
			tokenString = token
		} else if cookie, err := c.Cookie(auth.AccessTokenCookie); err == nil && cookie != "" {
			tokenString = cookie
			fromCookie = true
		}

		if tokenString == "" {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			} else if errors.Is(err, auth.ErrInvalidFormat) {
				errorDetails = "Invalid token format"
			}
			abortWith(c, http.StatusUnauthorized, errorCode, "Authentication failed", errorDetails)
			return
		}

		if fromCookie && isStateChanging(c.Request.Method) {
			cookieToken, _ := c.Cookie(auth.CSRFCookie)
			if !auth.CSRFTokensMatch(c.GetHeader(auth.CSRFHeader), cookieToken) {
				abortWith(c, http.StatusForbidden, dto.ErrorCodeCSRFMismatch, "CSRF token missing or invalid", "")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, models.RoleType(claims.Role))
		c.Set(ContextCookieAuth, fromCookie)

		c.Next()
	}
}

// ActiveAccountRequired rejects tokens of users that were deleted or disabled
// after the token was issued
func (m *AuthMiddleware) ActiveAccountRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(ContextUserID)
		if userID <= 0 {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "User information not found")
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				abortWith(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Authentication failed", "User no longer exists")
				return
			}
			abortWith(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", "Failed to load user")
			return
		}

		if !user.IsActive {
			abortWith(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled", "")
			return
		}

		// Role changes take effect without a new token
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RoleRequired middleware to check if user has one of the required roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}

		current, _ := role.(models.RoleType)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}

		abortWith(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Access denied", "You don't have sufficient permissions for this operation")
	}
}

// CurrentActor returns the authenticated actor set by JWTAuth
func CurrentActor(c *gin.Context) (authz.Actor, bool) {
	userID := c.GetInt64(ContextUserID)
	if userID <= 0 {
		return authz.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	roleType, _ := role.(models.RoleType)
	return authz.Actor{UserID: userID, Role: roleType}, true
}
