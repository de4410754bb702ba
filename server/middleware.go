package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochabx/intersvc/log"
)

const (
	// HeaderAPIKey carries the caller's credential.
	HeaderAPIKey = "X-API-Key"

	// QueryCorrelationID is the query parameter the correlation id travels in.
	QueryCorrelationID = "correlation_id"

	// ContextCorrelationID is the gin context key the resolved correlation
	// id is stored under.
	ContextCorrelationID = "correlation_id"
)

// APIKeyAuth validates the X-API-Key header against the accepted keys.
// Comparison is constant time per key so the header value leaks nothing
// about how close a guess came.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(HeaderAPIKey)
		if presented == "" {
			Error(c, http.StatusUnauthorized, "missing API key")
			c.Abort()
			return
		}

		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				c.Next()
				return
			}
		}

		Error(c, http.StatusForbidden, "invalid API key")
		c.Abort()
	}
}

// CorrelationID resolves the request's correlation id from the query
// string and stores it in the gin context. When require is false a missing
// id is minted instead of rejected.
func CorrelationID(require bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query(QueryCorrelationID)
		if id == "" {
			if require {
				Error(c, http.StatusBadRequest, "correlation_id query parameter is required")
				c.Abort()
				return
			}
			id = uuid.NewString()
		}

		c.Set(ContextCorrelationID, id)
		c.Next()
	}
}

// GetCorrelationID returns the correlation id resolved by the
// CorrelationID middleware, or empty when the middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextCorrelationID)
}

// RequestLogger logs one line per request with status, timing and the
// correlation id when present.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.G
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		event := logger.Info().
			Int("status", c.Writer.Status()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if id := GetCorrelationID(c); id != "" {
			event = event.Str("correlation_id", id)
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}

		event.Send()
	}
}
