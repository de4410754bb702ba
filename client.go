package intersvc

import (
	"net/http"
	"time"

	"github.com/kochabx/intersvc/envelope"
	"github.com/kochabx/intersvc/errors"
	"github.com/kochabx/intersvc/log"
	"github.com/kochabx/intersvc/metrics"
)

const (
	// HeaderAPIKey carries the service credential. It is set by the client
	// on every request and cannot be overridden by per-request headers.
	HeaderAPIKey = "X-API-Key"

	// QueryCorrelationID is the query parameter the correlation id travels in.
	QueryCorrelationID = "correlation_id"

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

const (
	defaultAPIPrefix     = "/api/v1/inter-service"
	defaultTimeout       = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 500 * time.Millisecond
)

func defaultRetryStatusCodes() []int {
	return []int{
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
}

// Config carries everything needed to talk to one peer service.
// Key material is optional: a client without keys works fine until a call
// asks for encryption or decryption.
type Config struct {
	// BaseURL is the scheme and host of the peer service, e.g.
	// "https://autologin.example.com". Required.
	BaseURL string `mapstructure:"base_url" validate:"required"`

	// APIKey authenticates this client to the peer. Required.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// APIPrefix is prepended to every endpoint. Defaults to
	// "/api/v1/inter-service". Set to "/" to disable.
	APIPrefix string `mapstructure:"api_prefix"`

	// Timeout bounds each individual attempt, not the whole retry loop.
	Timeout time.Duration `mapstructure:"timeout"`

	// RetryAttempts is the total number of tries, first attempt included.
	RetryAttempts int `mapstructure:"retry_attempts"`

	// RetryStatusCodes lists the HTTP statuses worth retrying.
	// Defaults to 429, 502, 503 and 504.
	RetryStatusCodes []int `mapstructure:"retry_status_codes"`

	// RetryBackoff is the base delay between attempts. The wait grows
	// linearly: attempt n sleeps n*RetryBackoff before retrying.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`

	// PeerPublicKey is the PEM encoded P-256 public key of the peer,
	// used to seal outgoing request bodies.
	PeerPublicKey string `mapstructure:"peer_public_key"`

	// PrivateKey is this service's PEM encoded P-256 private key,
	// used to open encrypted response bodies.
	PrivateKey string `mapstructure:"private_key"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.APIPrefix == "" {
		c.APIPrefix = defaultAPIPrefix
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.RetryStatusCodes == nil {
		c.RetryStatusCodes = defaultRetryStatusCodes()
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
}

// Client is an HTTP client bound to one peer service. It is safe for
// concurrent use; per-call state lives on the stack of each Request.
type Client struct {
	cfg Config

	httpClient    *http.Client
	peerPublicKey *envelope.PublicKey
	privateKey    *envelope.PrivateKey

	retryable map[int]struct{}

	logger  *log.Logger
	metrics *metrics.Metrics
}

// ClientOption configures optional collaborators of a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client. The configured
// Timeout is not applied to a caller-supplied client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger attaches a logger. Without one the client stays silent.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics attaches request metrics. Without one no metrics are recorded.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a Client from cfg. Key material, when present, is parsed and
// validated here so that a malformed or off-curve key fails fast instead of
// surfacing on the first encrypted call.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()

	if cfg.BaseURL == "" {
		return nil, errors.URLBuild("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.Authentication("API key is required")
	}

	c := &Client{
		cfg:       cfg,
		retryable: make(map[int]struct{}, len(cfg.RetryStatusCodes)),
	}
	for _, code := range cfg.RetryStatusCodes {
		c.retryable[code] = struct{}{}
	}

	if cfg.PeerPublicKey != "" {
		pub, err := envelope.ParsePublicKeyPEM([]byte(cfg.PeerPublicKey))
		if err != nil {
			return nil, errors.Encryption("invalid peer public key").WithCause(err)
		}
		c.peerPublicKey = pub
	}
	if cfg.PrivateKey != "" {
		priv, err := envelope.ParsePrivateKeyPEM([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, errors.Encryption("invalid private key").WithCause(err)
		}
		c.privateKey = priv
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return c, nil
}

// CanEncrypt reports whether the client holds a peer public key.
func (c *Client) CanEncrypt() bool {
	return c.peerPublicKey != nil
}

// CanDecrypt reports whether the client holds a private key.
func (c *Client) CanDecrypt() bool {
	return c.privateKey != nil
}
