package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/intersvc/envelope"
	"github.com/kochabx/intersvc/log"
)

// DecryptConfig configures the envelope decryption middleware.
type DecryptConfig struct {
	// PrivateKey opens incoming envelopes. Required.
	PrivateKey *envelope.PrivateKey
	// SkipFunc skips decryption for matching requests.
	SkipFunc func(*gin.Context) bool
	// Logger defaults to the global logger.
	Logger *log.Logger
}

// DecryptBody opens an enveloped request body and replaces it with the
// plaintext, so downstream handlers bind JSON as usual. Requests without a
// body, and bodies that are not envelopes, pass through untouched; an
// envelope that fails to open is rejected with 400. The correlation id the
// envelope was sealed under must match the one on the request.
func DecryptBody(cfg DecryptConfig) gin.HandlerFunc {
	if cfg.PrivateKey == nil {
		panic("server: DecryptConfig.PrivateKey is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		if cfg.SkipFunc != nil && cfg.SkipFunc(c) {
			c.Next()
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("decrypt: read request body failed")
			Error(c, http.StatusBadRequest, "unreadable request body")
			c.Abort()
			return
		}
		if len(body) == 0 {
			c.Next()
			return
		}

		env, err := envelope.Parse(body)
		if err != nil {
			// Plain JSON from a caller that did not encrypt.
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		plaintext, err := envelope.Open(cfg.PrivateKey, env, GetCorrelationID(c))
		if err != nil {
			cfg.Logger.Warn().
				Str("correlation_id", GetCorrelationID(c)).
				Msg("decrypt: open envelope failed")
			Error(c, http.StatusBadRequest, "failed to decrypt request body")
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(plaintext))
		c.Request.ContentLength = int64(len(plaintext))

		c.Next()
	}
}

// EncryptJSON seals data to the recipient's public key under the request's
// correlation id and writes the envelope as the response body. Use it from
// handlers whose callers asked for an encrypted reply.
func EncryptJSON(c *gin.Context, code int, recipient *envelope.PublicKey, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to encode response")
		return
	}

	env, err := envelope.Seal(recipient, payload, GetCorrelationID(c))
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to encrypt response")
		return
	}

	c.JSON(code, env)
}
