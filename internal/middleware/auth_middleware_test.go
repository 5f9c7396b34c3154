package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
)

type usersByID map[int64]*models.User

func (u usersByID) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperrors.ErrUserNotFound
}

var (
	testTeacher = &models.User{ID: 7, Username: "teacher", Role: models.RoleTeacher, IsActive: true}
	testAdmin   = &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin, IsActive: true}
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT(ttl time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: ttl,
		TokenIssuer:    "assessai-test",
	})
}

func tokenFor(t *testing.T, svc *auth.JWTService, user *models.User) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func setupAuthRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "role": actor.Role})
	})
	r.GET("/protected", handlers...)
	r.POST("/protected", handlers...)
	return r
}

func TestJWTAuth_BearerToken(t *testing.T) {
	jwtService := newJWT(time.Hour)
	router := setupAuthRouter(NewAuthMiddleware(jwtService, usersByID{}))

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtService, testTeacher))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":7`)
	assert.Contains(t, w.Body.String(), `"role":"teacher"`)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	router := setupAuthRouter(NewAuthMiddleware(newJWT(time.Hour), usersByID{}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_008")
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	jwtService := newJWT(-time.Minute)
	router := setupAuthRouter(NewAuthMiddleware(jwtService, usersByID{}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtService, testTeacher))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_006")
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	router := setupAuthRouter(NewAuthMiddleware(newJWT(time.Hour), usersByID{}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestJWTAuth_CookieSessionCSRF(t *testing.T) {
	jwtService := newJWT(time.Hour)
	router := setupAuthRouter(NewAuthMiddleware(jwtService, usersByID{}))
	token := tokenFor(t, jwtService, testTeacher)

	tests := []struct {
		name       string
		method     string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "read without csrf", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "write without csrf", method: http.MethodPost, cookie: "abc", wantStatus: http.StatusForbidden},
		{name: "write with mismatched csrf", method: http.MethodPost, header: "abc", cookie: "xyz", wantStatus: http.StatusForbidden},
		{name: "write with matching csrf", method: http.MethodPost, header: "abc", cookie: "abc", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/protected", nil)
			req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CSRFCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(auth.CSRFHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "AUTH_009")
			}
		})
	}
}

func TestActiveAccountRequired(t *testing.T) {
	jwtService := newJWT(time.Hour)
	disabled := &models.User{ID: 9, Username: "gone", Role: models.RoleTeacher, IsActive: false}
	m := NewAuthMiddleware(jwtService, usersByID{7: testTeacher, 9: disabled})
	router := setupAuthRouter(m, m.ActiveAccountRequired())

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{name: "active", user: testTeacher, wantStatus: http.StatusOK},
		{name: "disabled", user: disabled, wantStatus: http.StatusForbidden},
		{name: "deleted", user: &models.User{ID: 99, Username: "ghost", Role: models.RoleTeacher}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtService, tt.user))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	jwtService := newJWT(time.Hour)
	m := NewAuthMiddleware(jwtService, usersByID{})
	router := setupAuthRouter(m, m.RoleRequired(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtService, testTeacher))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtService, testAdmin))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
