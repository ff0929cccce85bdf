package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/faxbot/faxbot/config"
)

var Logger zerolog.Logger

// Initialize configures the global logger
func Initialize() {
	cfg := config.Get()

	var output io.Writer = os.Stdout
	if cfg.IsDevelopment() {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	level := zerolog.InfoLevel
	switch cfg.Logger.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", cfg.App.Name).
		Str("version", cfg.App.Version).
		Logger()

	log.Logger = Logger
}

// MaskNumber reduces a phone number to its last four digits for logging,
// per the "never log full destination numbers" policy.
func MaskNumber(number string) string {
	if len(number) <= 4 {
		return "***" + number
	}
	return "***" + number[len(number)-4:]
}

// LogAuthEvent logs an authentication/authorization outcome without ever
// including the secret half of a token.
func LogAuthEvent(ctx context.Context, keyID string, route string, allowed bool, reason string) {
	event := Logger.Info()
	if !allowed {
		event = Logger.Warn()
	}

	event = event.
		Str("type", "auth").
		Str("route", route).
		Bool("allowed", allowed)

	if keyID != "" {
		event = event.Str("key_id", keyID)
	}
	if reason != "" {
		event = event.Str("reason", reason)
	}

	event.Msg("auth check")
}

// LogWebhookEvent logs an inbound webhook/callback outcome. rawBody and
// tokens must never be passed here.
func LogWebhookEvent(ctx context.Context, backend, eventType, providerSID string, deduped bool, err error) {
	event := Logger.Info()
	if err != nil {
		event = Logger.Error().Err(err)
	}

	event = event.
		Str("type", "webhook").
		Str("backend", backend).
		Str("event_type", eventType).
		Str("provider_sid", providerSID).
		Bool("deduped", deduped)

	event.Msg("webhook processed")
}

// LogProviderEvent logs a provider dispatch attempt.
func LogProviderEvent(ctx context.Context, backend, jobID string, op string, success bool, errMsg string) {
	event := Logger.Info()
	if !success {
		event = Logger.Error()
	}

	event = event.
		Str("type", "provider").
		Str("backend", backend).
		Str("job_id", jobID).
		Str("op", op).
		Bool("success", success)

	if errMsg != "" {
		event = event.Str("error", errMsg)
	}

	event.Msg("provider operation")
}

// LogRetentionSweep logs the outcome of one retention/cleanup pass.
func LogRetentionSweep(ctx context.Context, artifactsDeleted, dedupPurged int, err error) {
	event := Logger.Info()
	if err != nil {
		event = Logger.Error().Err(err)
	}

	event.
		Str("type", "retention").
		Int("artifacts_deleted", artifactsDeleted).
		Int("dedup_purged", dedupPurged).
		Msg("retention sweep completed")
}

// LogError logs error messages with context.
func LogError(ctx context.Context, operation string, err error, details map[string]any) {
	event := Logger.Error().Str("operation", operation).Err(err)
	for key, value := range details {
		event = event.Interface(key, value)
	}
	event.Msg("operation failed")
}

// LogInfo logs informational messages.
func LogInfo(ctx context.Context, operation string, message string, details map[string]any) {
	event := Logger.Info().Str("operation", operation)
	for key, value := range details {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}

// LogWarning logs warning messages.
func LogWarning(ctx context.Context, operation string, message string, details map[string]any) {
	event := Logger.Warn().Str("operation", operation)
	for key, value := range details {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}

// LogDebug logs debug messages (only surfaced in development).
func LogDebug(ctx context.Context, operation string, message string, details map[string]any) {
	event := Logger.Debug().Str("operation", operation)
	for key, value := range details {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}

// LogDatabaseOperation logs database operations for debugging.
func LogDatabaseOperation(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	event := Logger.Debug().
		Str("type", "database").
		Str("operation", operation).
		Str("table", table).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("database operation failed")
		return
	}
	event.Msg("database operation completed")
}

// LogAPIRequest logs API requests for monitoring.
func LogAPIRequest(ctx context.Context, method string, path string, keyID string, statusCode int, duration time.Duration) {
	event := Logger.Info().
		Str("type", "api_request").
		Str("method", method).
		Str("path", path).
		Int("status_code", statusCode).
		Dur("duration", duration)

	if keyID != "" {
		event = event.Str("key_id", keyID)
	}

	event.Msg("API request processed")
}

// Standard logging functions, compatible with the stdlib logger interface.

func Print(v ...any)                 { Logger.Info().Msg(fmt.Sprint(v...)) }
func Printf(format string, v ...any) { Logger.Info().Msgf(format, v...) }
func Println(v ...any)               { Logger.Info().Msg(fmt.Sprintln(v...)) }
func Fatal(v ...any)                 { Logger.Fatal().Msg(fmt.Sprint(v...)) }
func Fatalf(format string, v ...any) { Logger.Fatal().Msgf(format, v...) }
func Fatalln(v ...any)               { Logger.Fatal().Msg(fmt.Sprintln(v...)) }

// WithField creates an event with a single field attached.
func WithField(key string, value any) *zerolog.Event {
	return Logger.Info().Interface(key, value)
}

// WithFields creates an event with multiple fields attached.
func WithFields(fields map[string]any) *zerolog.Event {
	event := Logger.Info()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	return event
}

// WithError creates an event carrying an error field.
func WithError(err error) *zerolog.Event {
	return Logger.Error().Err(err)
}

func InfoWithFields(message string, fields map[string]any) {
	event := Logger.Info()
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}

func ErrorWithFields(message string, err error, fields map[string]any) {
	event := Logger.Error().Err(err)
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}
