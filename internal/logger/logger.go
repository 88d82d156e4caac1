// Package logger builds the application's zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a console logger in development and a JSON production logger
// everywhere else.
func New(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
