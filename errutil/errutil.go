package errutil

import (
	"strconv"

	"go.uber.org/zap"
)

// MustParseFloat returns s as a float64, or 0 after a warning naming what
// was being parsed.
func MustParseFloat(log *zap.Logger, s string, context string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn("parse float", zap.String("context", context), zap.String("input", s), zap.Error(err))
		return 0
	}
	return f
}

// LogError records err at error level under the given message. Nil is a no-op.
func LogError(log *zap.Logger, context string, err error) {
	if err != nil {
		log.Error(context, zap.Error(err))
	}
}

// FatalError logs err and exits the process.
func FatalError(log *zap.Logger, context string, err error) {
	log.Fatal(context, zap.Error(err))
}
