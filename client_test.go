package intersvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/intersvc/envelope"
	"github.com/kochabx/intersvc/errors"
)

const testAPIKey = "test-api-key"

func newTestClient(t *testing.T, baseURL string, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		BaseURL:      baseURL,
		APIKey:       testAPIKey,
		RetryBackoff: time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func testKeyPEMs(t *testing.T) (privPEM, pubPEM string, priv *envelope.PrivateKey) {
	t.Helper()

	priv, err := envelope.GenerateKey()
	require.NoError(t, err)

	privBytes, err := envelope.MarshalPrivateKeyPEM(priv)
	require.NoError(t, err)
	pubBytes, err := envelope.MarshalPublicKeyPEM(priv.Public())
	require.NoError(t, err)

	return string(privBytes), string(pubBytes), priv
}

func TestRequestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/inter-service/users/42", r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get(HeaderAPIKey))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"ada"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "users/{user_id}",
		WithPathParam("user_id", 42),
	)

	require.True(t, res.OK())
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, res.Decode(&user))
	assert.Equal(t, 42, user.ID)
	assert.Equal(t, "ada", user.Name)
}

func TestRequestPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret", body["password"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "credentials",
		WithMethod(http.MethodPost),
		WithData(map[string]string{"password": "secret"}),
	)

	require.True(t, res.OK())
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestRequestRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "flaky")

	require.True(t, res.OK())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRequestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.RetryAttempts = 2
	})
	res := c.Request(context.Background(), "down")

	require.False(t, res.OK())
	assert.Equal(t, errors.KindRequest, res.Err.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRequestNonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "invalid")

	require.False(t, res.OK())
	assert.Equal(t, errors.KindRequest, res.Err.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "non-retryable status must not be retried")
}

func TestRequestAuthenticationFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
		}))

		c := newTestClient(t, srv.URL)
		res := c.Request(context.Background(), "protected")
		srv.Close()

		require.False(t, res.OK())
		assert.Equal(t, errors.KindAuthentication, res.Err.Kind)
		assert.Equal(t, status, res.StatusCode)
		assert.Equal(t, int32(1), calls.Load(), "auth failures must not be retried")
	}
}

func TestRequestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.RetryAttempts = 2
	})
	res := c.Request(context.Background(), "gone")

	require.False(t, res.OK())
	assert.Equal(t, errors.KindRequest, res.Err.Kind)
	assert.Equal(t, 0, res.StatusCode)
	assert.NotNil(t, res.Err.Unwrap())
}

func TestEncryptWithoutKeyMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "secure",
		WithMethod(http.MethodPost),
		WithData(map[string]string{"k": "v"}),
		WithEncrypt(),
	)

	require.False(t, res.OK())
	assert.Equal(t, errors.KindEncryption, res.Err.Kind)
	assert.Equal(t, 0, res.StatusCode)
	assert.Equal(t, int32(0), calls.Load(), "precondition failures must not reach the network")
}

func TestDecryptWithoutKeyMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "secure", WithDecrypt())

	require.False(t, res.OK())
	assert.Equal(t, errors.KindEncryption, res.Err.Kind)
	assert.Equal(t, int32(0), calls.Load())
}

func TestEncryptedRoundTrip(t *testing.T) {
	privPEM, pubPEM, serverPriv := testKeyPEMs(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.URL.Query().Get(QueryCorrelationID)
		require.NotEmpty(t, correlationID)

		env := new(envelope.Envelope)
		require.NoError(t, json.NewDecoder(r.Body).Decode(env))

		plaintext, err := envelope.Open(serverPriv, env, correlationID)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.Unmarshal(plaintext, &body))
		assert.Equal(t, "hunter2", body["password"])

		reply, err := envelope.Seal(serverPriv.Public(), []byte(`{"status":"success"}`), correlationID)
		require.NoError(t, err)
		out, err := reply.Marshal()
		require.NoError(t, err)
		_, _ = w.Write(out)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.PeerPublicKey = pubPEM
		cfg.PrivateKey = privPEM
	})

	res := c.Request(context.Background(), "credentials/store",
		WithMethod(http.MethodPost),
		WithData(map[string]string{"password": "hunter2"}),
		WithEncrypt(),
		WithDecrypt(),
		WithCorrelationID("round-trip-001"),
	)

	require.True(t, res.OK())

	var reply struct {
		Status string `json:"status"`
	}
	require.NoError(t, res.Decode(&reply))
	assert.Equal(t, "success", reply.Status)
}

func TestDecryptWrongCorrelationID(t *testing.T) {
	privPEM, pubPEM, serverPriv := testKeyPEMs(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Seal the reply under a different correlation id than the caller's.
		reply, err := envelope.Seal(serverPriv.Public(), []byte(`{"status":"success"}`), "other-id")
		require.NoError(t, err)
		out, err := reply.Marshal()
		require.NoError(t, err)
		_, _ = w.Write(out)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.PeerPublicKey = pubPEM
		cfg.PrivateKey = privPEM
	})

	res := c.Request(context.Background(), "secure",
		WithDecrypt(),
		WithCorrelationID("expected-id"),
	)

	require.False(t, res.OK())
	assert.Equal(t, errors.KindEncryption, res.Err.Kind)
}

func TestCorrelationIDAppendedToQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "corr-123", r.URL.Query().Get(QueryCorrelationID))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "ping", WithCorrelationID("corr-123"))
	require.True(t, res.OK())
}

func TestAPIKeyHeaderCannotBeOverridden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAPIKey, r.Header.Get(HeaderAPIKey))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "ping",
		WithHeader(HeaderAPIKey, "spoofed"),
		WithHeaders(map[string]string{"X-Custom": "kept"}),
	)
	require.True(t, res.OK())
}

func TestNewRejectsInvalidKeys(t *testing.T) {
	_, err := New(Config{
		BaseURL:       "https://svc.test",
		APIKey:        "k",
		PeerPublicKey: "not a pem block",
	})
	require.Error(t, err)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindEncryption, e.Kind)
}

func TestNewRequiresBaseURLAndAPIKey(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "https://svc.test"})
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{BaseURL: "https://svc.test", APIKey: "k"}
	cfg.ApplyDefaults()

	assert.Equal(t, "/api/v1/inter-service", cfg.APIPrefix)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.ElementsMatch(t, []int{429, 502, 503, 504}, cfg.RetryStatusCodes)
}

func TestPerRequestAPIPrefixOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Request(context.Background(), "ping", WithAPIPrefix("/internal"))
	require.True(t, res.OK())
}
