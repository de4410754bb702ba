// Package log wraps zerolog with the SDK's logging conventions: console
// output by default, optional rotated file output, and a process-wide
// logger for package-level use. Request/response payloads and key material
// are never logged by the SDK itself.
package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/intersvc/log/writer"
)

// Logger is a zerolog.Logger with an owned writer for resource cleanup.
type Logger struct {
	zerolog.Logger
	writer io.Writer
	closer io.Closer
}

// Close releases the logger's writer resources, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

func newLogger(w io.Writer, opts ...Option) *Logger {
	logger := &Logger{
		writer: w,
		Logger: zerolog.New(w).With().Timestamp().Logger(),
	}

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}

// New creates a Logger writing to the console.
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewFile creates a Logger writing to a rotated file.
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	c.applyDefaults()

	w, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	logger := newLogger(w, opts...)

	if closer, ok := w.(io.Closer); ok {
		logger.closer = closer
	}

	return logger, nil
}
