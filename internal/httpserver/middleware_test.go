package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacta-backend/internal/util"
	"pacta-backend/pkg/rbac"
	"pacta-backend/pkg/trace"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newAuthTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"user_id": c.GetInt64("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := newAuthTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeErrorBody(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "token_missing", body["code"])
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := newAuthTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_invalid", decodeErrorBody(t, w)["code"])
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": int64(5),
		"role":    "user",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	r := newAuthTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_expired", decodeErrorBody(t, w)["code"])
}

func TestAuthMiddlewareAttachesPrincipal(t *testing.T) {
	token, err := util.GenerateJWT(5, "admin", testSecret)
	require.NoError(t, err)

	r := newAuthTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.UserID)
	assert.Equal(t, "admin", body.Role)
}

func TestRequirePermission(t *testing.T) {
	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.POST("/cleanup",
			func(c *gin.Context) { c.Set("role", role) },
			RequirePermission(rbac.PermissionNotificationCleanup),
			func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) },
		)
		return r
	}

	w := httptest.NewRecorder()
	newRouter(rbac.RoleUser).ServeHTTP(w, httptest.NewRequest("POST", "/cleanup", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeErrorBody(t, w)["code"])

	w = httptest.NewRecorder()
	newRouter(rbac.RoleAdmin).ServeHTTP(w, httptest.NewRequest("POST", "/cleanup", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionWithoutRole(t *testing.T) {
	r := gin.New()
	r.POST("/cleanup",
		RequirePermission(rbac.PermissionNotificationCleanup),
		func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/cleanup", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not_authenticated", decodeErrorBody(t, w)["code"])
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = trace.FromContext(c.Request.Context())
		c.Status(200)
	})

	// Incoming trace ID is propagated.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc123", seen)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))

	// Missing trace ID gets generated.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(trace.HeaderName))
}
