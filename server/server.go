// Package server is the receiving side of the inter-service protocol: a
// gin router wired with API key authentication, correlation id enforcement
// and transparent envelope decryption, so handlers only ever see plaintext
// JSON bodies.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/intersvc/envelope"
	"github.com/kochabx/intersvc/errors"
	"github.com/kochabx/intersvc/log"
	"github.com/kochabx/intersvc/metrics"
)

const (
	defaultAddr            = ":8080"
	defaultAPIPrefix       = "/api/v1/inter-service"
	defaultShutdownTimeout = 10 * time.Second
)

// Config describes one inter-service endpoint surface.
type Config struct {
	// Addr is the listen address. Defaults to ":8080".
	Addr string `mapstructure:"addr"`

	// APIPrefix is the route group every inter-service handler mounts
	// under. Defaults to "/api/v1/inter-service".
	APIPrefix string `mapstructure:"api_prefix"`

	// APIKeys lists the accepted X-API-Key values, one per caller.
	APIKeys []string `mapstructure:"api_keys" validate:"required,min=1"`

	// RequireCorrelationID rejects requests without a correlation_id
	// query parameter instead of minting one.
	RequireCorrelationID bool `mapstructure:"require_correlation_id"`

	// PrivateKey is this service's PEM encoded P-256 private key. When
	// set, encrypted request bodies are opened before handlers run.
	PrivateKey string `mapstructure:"private_key"`

	// MetricsPath exposes the Prometheus registry when non-empty.
	MetricsPath string `mapstructure:"metrics_path"`

	// ShutdownTimeout bounds graceful shutdown once the run context ends.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.APIPrefix == "" {
		c.APIPrefix = defaultAPIPrefix
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	cfg    Config
	engine *gin.Engine
	group  *gin.RouterGroup
	server *http.Server

	privateKey *envelope.PrivateKey

	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures optional collaborators of a Server.
type Option func(*Server)

// WithLogger attaches a logger used by the request log and the crypto
// middleware. Without one the global logger is used.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics attaches a metrics set and serves its registry on
// Config.MetricsPath.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New builds the server. The private key, when configured, is parsed here
// so a bad key fails at startup rather than on the first encrypted request.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.ApplyDefaults()

	if len(cfg.APIKeys) == 0 {
		return nil, errors.Authentication("at least one API key is required")
	}

	s := &Server{cfg: cfg, logger: log.G}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.PrivateKey != "" {
		priv, err := envelope.ParsePrivateKeyPEM([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, errors.Encryption("invalid private key").WithCause(err)
		}
		s.privateKey = priv
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestLogger(s.logger))

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.MetricsPath != "" && s.metrics != nil {
		s.engine.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}

	s.group = s.engine.Group(cfg.APIPrefix)
	s.group.Use(
		APIKeyAuth(cfg.APIKeys),
		CorrelationID(cfg.RequireCorrelationID),
	)
	if s.privateKey != nil {
		s.group.Use(DecryptBody(DecryptConfig{
			PrivateKey: s.privateKey,
			Logger:     s.logger,
		}))
	}

	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.engine,
	}

	return s, nil
}

// Group returns the authenticated route group handlers mount under.
func (s *Server) Group() *gin.RouterGroup {
	return s.group
}

// Engine returns the underlying gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("inter-service server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("inter-service server shutting down")
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
