package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Production JSON output by default,
// console output at debug level when debug is set.
func New(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	return config.Build()
}
