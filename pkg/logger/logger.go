package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

type ctxKey struct{}

// Init configures the global logger. Development gets a console writer, everything else JSON.
func Init(env string, logLevel string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if env == "development" || env == "dev" || env == "" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &log
}

// WithContext returns the request scoped logger, or the global one.
func WithContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return l
	}
	return &log
}

func NewContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

func WithMerchantID(l zerolog.Logger, merchantID string) zerolog.Logger {
	return l.With().Str("merchant_id", merchantID).Logger()
}

// WithSession tags a logger with the authoring session it works on.
func WithSession(ctx context.Context, sessionID string) *zerolog.Logger {
	l := WithContext(ctx).With().Str("session_id", sessionID).Logger()
	return &l
}

// --- Structured Logging Helpers ---

// UpstreamCall logs one catalog API round trip. Failures are warnings: the UI offers a retry.
func UpstreamCall(ctx context.Context, op string, status int, duration time.Duration, err error) {
	l := WithContext(ctx)
	if err != nil {
		l.Warn().
			Str("op", op).
			Int("status", status).
			Dur("duration_ms", duration).
			Err(err).
			Msg("Catalog API call failed")
		return
	}
	l.Debug().
		Str("op", op).
		Int("status", status).
		Dur("duration_ms", duration).
		Msg("Catalog API call")
}

func ServiceStart(name, version, port string) {
	log.Info().
		Str("service", name).
		Str("version", version).
		Str("port", port).
		Msg("Service Started")
}

func ServiceStop(name string) {
	log.Info().
		Str("service", name).
		Msg("Service Stopped")
}
