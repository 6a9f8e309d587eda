package web

import (
	"babymassage/webapp/internal/domain"
	"babymassage/webapp/internal/session"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextSessionKey   = "session"
	ContextRequestIDKey = "requestID"
)

// RequestLogger tags every request with an ID and logs the outcome.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(ContextRequestIDKey, requestID)

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// LoadSession resolves the visitor's session once per request and stashes
// it in the Gin context. Guards and handlers read from there, so the
// allow/redirect decision is always made against a resolved session, never
// a half-initialized one.
func LoadSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := store.Current(c.Request.Context()); sess != nil {
			c.Set(ContextSessionKey, sess)
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	sess, ok := raw.(*domain.Session)
	if !ok {
		return nil
	}
	return sess
}

// RequireAuth redirects signed-out visitors to the login page, preserving
// the originally requested location as the from parameter.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login?from="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTeacher sends authenticated students to the unauthorized page.
// Must run AFTER RequireAuth.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil {
			c.Redirect(http.StatusSeeOther, "/login?from="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if !sess.IsTeacher {
			c.Redirect(http.StatusSeeOther, "/unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
