package intersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kochabx/intersvc/envelope"
	"github.com/kochabx/intersvc/errors"
)

// Request performs one call against the peer service and always returns a
// Result. URL building and body sealing happen before anything touches the
// network, so a bad template or a missing key never produces a partial
// request. Transport failures and retryable statuses are retried up to the
// configured attempt count with a linearly growing backoff; the encrypted
// body is sealed once and reused across attempts.
func (c *Client) Request(ctx context.Context, endpoint string, opts ...Option) *Result {
	o := newRequestOptions(opts)

	prefix := c.cfg.APIPrefix
	if o.apiPrefix != nil {
		prefix = *o.apiPrefix
	}

	fullURL, uerr := buildURL(c.cfg.BaseURL, prefix, endpoint, o.pathParams, o.effectiveQuery())
	if uerr != nil {
		return failure(0, uerr)
	}

	correlationID := o.correlation()

	body, eerr := c.buildBody(o, correlationID)
	if eerr != nil {
		return failure(0, eerr)
	}
	if o.decrypt && c.privateKey == nil {
		return failure(0, errors.Encryption("decryption requested but no private key is configured"))
	}

	statusCode, respBody, rerr := c.send(ctx, o, fullURL, body)
	if rerr != nil {
		return failure(statusCode, rerr)
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return failure(statusCode, errors.Authentication("authentication rejected by peer service").
			WithStatusCode(statusCode).
			WithMetadata(map[string]string{"url": fullURL}))
	}
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return failure(statusCode, errors.Request("peer service returned status %d", statusCode).
			WithStatusCode(statusCode).
			WithMetadata(map[string]string{"url": fullURL, "body": truncate(respBody, 512)}))
	}

	if o.decrypt && len(respBody) > 0 {
		plaintext, derr := c.openResponse(respBody, correlationID)
		if derr != nil {
			return failure(statusCode, derr)
		}
		respBody = plaintext
	}

	return &Result{StatusCode: statusCode, Data: respBody}
}

// buildBody encodes the request data and, when the call asks for it, seals
// the encoded bytes into an envelope bound to the correlation id.
func (c *Client) buildBody(o *requestOptions, correlationID string) ([]byte, *errors.Error) {
	if o.encrypt && c.peerPublicKey == nil {
		return nil, errors.Encryption("encryption requested but no peer public key is configured")
	}
	if o.data == nil {
		return nil, nil
	}

	payload, err := json.Marshal(o.data)
	if err != nil {
		return nil, errors.Request("failed to encode request body").WithCause(err)
	}
	if !o.encrypt {
		return payload, nil
	}

	env, err := envelope.Seal(c.peerPublicKey, payload, correlationID)
	if err != nil {
		c.metrics.ObserveEnvelopeFailure("seal")
		return nil, errors.Encryption("failed to seal request body").WithCause(err)
	}
	sealed, err := env.Marshal()
	if err != nil {
		c.metrics.ObserveEnvelopeFailure("seal")
		return nil, errors.Encryption("failed to encode envelope").WithCause(err)
	}
	return sealed, nil
}

// openResponse parses the response body as an envelope and opens it with
// the client's private key.
func (c *Client) openResponse(body []byte, correlationID string) ([]byte, *errors.Error) {
	env, err := envelope.Parse(body)
	if err != nil {
		c.metrics.ObserveEnvelopeFailure("open")
		return nil, errors.Encryption("response is not a valid envelope").WithCause(err)
	}
	plaintext, err := envelope.Open(c.privateKey, env, correlationID)
	if err != nil {
		c.metrics.ObserveEnvelopeFailure("open")
		return nil, errors.Encryption("failed to open response body").WithCause(err)
	}
	return plaintext, nil
}

// send runs the retry loop around individual attempts. It returns the
// status code and body of the final attempt, or a request error when every
// attempt failed at the transport level.
func (c *Client) send(ctx context.Context, o *requestOptions, fullURL string, body []byte) (int, []byte, *errors.Error) {
	attempts := c.cfg.RetryAttempts

	var (
		statusCode int
		respBody   []byte
		lastErr    error
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.metrics.ObserveRetry()
			if c.logger != nil {
				c.logger.Warn().
					Str("method", o.method).
					Str("url", fullURL).
					Int("attempt", attempt).
					Int("status", statusCode).
					Err(lastErr).
					Msg("retrying request")
			}
			if err := c.backoff(ctx, attempt-1); err != nil {
				return statusCode, nil, errors.Request("request cancelled during retry backoff").WithCause(err)
			}
		}

		status, data, err := c.attempt(ctx, o, fullURL, body)
		if err != nil {
			lastErr = err
			statusCode = 0
			continue
		}

		statusCode, respBody, lastErr = status, data, nil
		if !c.isRetryable(status) {
			break
		}
	}

	if lastErr != nil {
		return 0, nil, errors.Request("request failed after %d attempts", attempts).
			WithCause(lastErr).
			WithMetadata(map[string]string{"url": fullURL})
	}
	return statusCode, respBody, nil
}

// attempt performs one HTTP round trip and reads the full response body.
func (c *Client) attempt(ctx context.Context, o *requestOptions, fullURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, o.method, fullURL, reader)
	if err != nil {
		return 0, nil, err
	}

	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}
	// Set last so per-call headers cannot override the credential.
	req.Header.Set(HeaderAPIKey, c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(o.method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, err
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", o.method).
			Str("url", fullURL).
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("request completed")
	}
	return resp.StatusCode, data, nil
}

func (c *Client) isRetryable(statusCode int) bool {
	_, ok := c.retryable[statusCode]
	return ok
}

// backoff waits attempt*RetryBackoff, honouring context cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt) * c.cfg.RetryBackoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
