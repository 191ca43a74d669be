package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/models"
	"github.com/cybrella/cybrella-api/internal/service"
)

func protectedRouter(t *testing.T, authSvc *service.AuthService, roles ...models.UserRole) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWT(authSvc)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	group := r.Group("/admin", handlers...)
	group.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signToken(t *testing.T, secret string, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: "u1",
		Email:  "admin@cybrella.in",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMissingHeader(t *testing.T) {
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: "s3cret"})
	r := protectedRouter(t, authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidToken(t *testing.T) {
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: "s3cret"})
	r := protectedRouter(t, authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", models.RoleAdmin))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTWrongSecret(t *testing.T) {
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: "s3cret"})
	r := protectedRouter(t, authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", models.RoleAdmin))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleBlocksMismatch(t *testing.T) {
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: "s3cret"})
	r := protectedRouter(t, authSvc, models.RoleSuperAdmin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", models.RoleAdmin))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
