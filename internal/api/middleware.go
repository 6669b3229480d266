package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/session"
)

const (
	requestIDKey = "requestId"
	sessionKey   = "session"
)

// RequestLogger tags every request with an id and logs it once it finishes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set(requestIDKey, requestID)

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
	}
}

// sessionMiddleware attaches the browser's session, issuing a new cookie when
// the request carries none or an invalid one.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.CookieName); err == nil && token != "" {
		if sess, err := h.sessions.Resolve(token); err == nil {
			c.Set(sessionKey, sess)
			c.Next()
			return
		}
	}

	sess, token, err := h.sessions.Issue()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "failed to start session", err)
		c.Abort()
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
	c.Set(sessionKey, sess)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
