package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newRouter(roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.String(http.StatusOK, util.FormatID(claims.UserID))
	})
	r.GET("/private", handlers...)
	return r
}

func token(t *testing.T, role model.UserRole, tokenType, secret string, ttl time.Duration) string {
	t.Helper()
	user := &model.User{ID: 42, Email: "u@example.com", Role: role}
	signed, _, err := util.GenerateJWT(user, tokenType, secret, ttl)
	require.NoError(t, err)
	return signed
}

func get(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token(t, model.Student, util.TokenTypeAccess, testSecret, time.Hour), http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, model.Student, util.TokenTypeAccess, "other-secret", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, model.Student, util.TokenTypeAccess, testSecret, -time.Minute), http.StatusUnauthorized},
		{"refresh token", "Bearer " + token(t, model.Student, util.TokenTypeRefresh, testSecret, time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, model.Student, util.TokenTypeAccess, testSecret, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "42", w.Body.String())
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(model.Parent)

	tests := []struct {
		role model.UserRole
		want int
	}{
		{model.Parent, http.StatusOK},
		{model.Admin, http.StatusOK},
		{model.Student, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			w := get(r, "Bearer "+token(t, tt.role, util.TokenTypeAccess, testSecret, time.Hour))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoleMiddlewareWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RoleMiddleware(model.Parent), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}
