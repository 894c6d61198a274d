package logger

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
)

// RedactURL hides the token query parameter so actor URLs are safe to log
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// LogRequest logs an actor call with a level matching its status
func LogRequest(l Logger, method, rawURL string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         RedactURL(rawURL),
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("actor request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("actor request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("actor request server error", fields)
	default:
		l.InfoWithFields("actor request finished", fields)
	}
}

// LogFetchPass logs the outcome of one bulk fetch pass
func LogFetchPass(l Logger, username string, pass, requested, received int) {
	l.InfoWithFields("fetch pass completed", map[string]interface{}{
		"username":  username,
		"pass":      pass,
		"requested": requested,
		"received":  received,
	})
}

// LogRunSummary logs the final counts of an export run
func LogRunSummary(l Logger, username string, total, inRange int, path string) {
	l.InfoWithFields("export run completed", map[string]interface{}{
		"username": username,
		"total":    total,
		"in_range": inRange,
		"path":     path,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
