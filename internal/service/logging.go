package service

import (
	"context"

	"wasim/internal/privacy"

	"github.com/sirupsen/logrus"
)

// ContextKey is a package-local type to prevent context key collisions
// See staticcheck SA1029 guidance
type ContextKey string

// VerboseContextKey is the strongly-typed context key for verbose logging flag
const VerboseContextKey ContextKey = "verbose"

// IsVerboseLogging checks if verbose logging is enabled from context
func IsVerboseLogging(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if verbose, ok := ctx.Value(VerboseContextKey).(bool); ok {
		return verbose
	}
	return false
}

// WithVerboseLogging marks ctx so identifiers and content are logged unmasked
func WithVerboseLogging(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, VerboseContextKey, verbose)
}

// LogWithContext creates a logger entry for an operation. Identifier and content fields
// are masked unless verbose logging is enabled on ctx.
func LogWithContext(ctx context.Context, logger *logrus.Logger, operation string, fields logrus.Fields) *logrus.Entry {
	out := logrus.Fields{LogFieldOperation: operation}
	if IsVerboseLogging(ctx) {
		for k, v := range fields {
			out[k] = v
		}
	} else {
		for k, v := range privacy.MaskSensitiveFields(fields) {
			out[k] = v
		}
	}
	return logger.WithFields(out)
}
