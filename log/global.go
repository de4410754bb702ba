package log

import (
	"github.com/rs/zerolog"
)

var (
	// G is the global logger instance.
	G *Logger
)

func init() {
	G = New()
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(logger *Logger) {
	G = logger
}

// SetGlobalLevel sets the global logger's level.
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

// Debug returns a debug-level event on the global logger.
func Debug() *zerolog.Event {
	return G.Debug()
}

// Info returns an info-level event on the global logger.
func Info() *zerolog.Event {
	return G.Info()
}

// Warn returns a warn-level event on the global logger.
func Warn() *zerolog.Event {
	return G.Warn()
}

// Error returns an error-level event with stack on the global logger.
func Error() *zerolog.Event {
	return G.Error().Stack()
}

// Fatal returns a fatal-level event with stack on the global logger.
func Fatal() *zerolog.Event {
	return G.Fatal().Stack()
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	G.Debug().Msgf(format, args...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	G.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...any) {
	G.Warn().Msgf(format, args...)
}

// Errorf logs a formatted error message with stack.
func Errorf(format string, args ...any) {
	G.Error().Stack().Msgf(format, args...)
}
