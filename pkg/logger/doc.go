// Package logger provides the structured logging interface used across liexport.
//
// It wraps zerolog with a small field-oriented API:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("username", "janedoe").Info("fetch started")
//	logger.WithError(err).Error("export failed")
//
// Console output goes to stderr so that an export streamed to stdout stays
// clean. When LoggingConfig.File is set, JSON lines are also appended to
// that file.
//
// Components accept a Logger and fall back to GetLogger. Tests use
// NewTestLogger to capture and inspect messages, or NewNopLogger to discard
// them.
package logger
