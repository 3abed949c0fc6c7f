package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with the service's structured logging helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout at the level named by LOG_LEVEL
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"), gin.Mode() != gin.DebugMode)
}

// NewWithWriter builds a logger on w. Text output is used unless jsonOutput is set.
func NewWithWriter(w io.Writer, level string, jsonOutput bool) *Logger {
	lvl := getLogLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler).With(slog.String("service", "hobbystudio"))}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID scopes the logger to one request
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// LogHTTPRequest logs a completed HTTP request. Scope the logger with
// WithRequestID to correlate the line.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	level := slog.LevelInfo
	if c.Writer.Status() >= 500 {
		level = slog.LevelError
	}
	l.Logger.Log(c.Request.Context(), level,
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs the cause behind an error response
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
	)
}

// LogInsightsGenerated logs a completed insights computation
func (l *Logger) LogInsightsGenerated(ctx context.Context, studioID string, events int, weeklyPotential float64, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Insights Generated",
		slog.String("studio_id", studioID),
		slog.Int("events", events),
		slog.Float64("weekly_revenue_potential", weeklyPotential),
		slog.Duration("duration", duration),
	)
}

// LogEventsImported logs the outcome of a calendar import batch
func (l *Logger) LogEventsImported(ctx context.Context, studioID, integrationID string, imported, failed, duplicates int) {
	l.Logger.InfoContext(ctx,
		"Calendar Events Imported",
		slog.String("studio_id", studioID),
		slog.String("integration_id", integrationID),
		slog.Int("imported", imported),
		slog.Int("failed", failed),
		slog.Int("duplicates", duplicates),
	)
}

// LogCacheError logs a cache failure that did not fail the request
func (l *Logger) LogCacheError(ctx context.Context, operation, key string, err error) {
	l.Logger.WarnContext(ctx,
		"Cache Error",
		slog.String("operation", operation),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogMessagePublished logs a message delivered to the broker
func (l *Logger) LogMessagePublished(ctx context.Context, topic string, partition int32, offset int64, messageType string) {
	l.Logger.DebugContext(ctx,
		"Message Published",
		slog.String("topic", topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("message_type", messageType),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.Logger.InfoContext(ctx, msg, fieldArgs(fields)...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := append([]interface{}{slog.String("error", err.Error())}, fieldArgs(fields)...)
	l.Logger.ErrorContext(ctx, msg, args...)
}

func fieldArgs(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}

var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
