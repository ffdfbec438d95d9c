package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pacta-backend/internal/util"
	"pacta-backend/pkg/metrics"
	"pacta-backend/pkg/rbac"
	"pacta-backend/pkg/trace"
)

// AuthMiddleware rejects requests without a valid bearer token and
// attaches the decoded principal to the context. Expired and malformed
// tokens get distinct codes for client messaging but short-circuit the
// same way.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"code":    "token_missing",
				"message": "missing token",
			})
			c.Abort()
			return
		}

		principal, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			code := "token_invalid"
			message := "invalid token"
			if errors.Is(err, util.ErrTokenExpired) {
				code = "token_expired"
				message = "token expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"code":    code,
				"message": message,
			})
			c.Abort()
			return
		}

		// store the principal so handlers can use it
		c.Set("user_id", principal.UserID)
		c.Set("role", principal.Role)

		c.Next()
	}
}

// RequirePermission requires the authenticated principal's role to
// grant a permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"code":    "not_authenticated",
				"message": "user not authenticated",
			})
			c.Abort()
			return
		}

		r, ok := role.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"code":    "internal_error",
				"message": "internal error",
			})
			c.Abort()
			return
		}

		if err := rbac.CheckPermission(r, permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"code":    "forbidden",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// TraceMiddleware propagates or generates a trace ID for the request.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName, traceID)

		c.Next()
	}
}

// MetricsMiddleware records per-request latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
