package config

import (
	"log"

	"go.uber.org/zap"
)

// Logger is the process-wide logger. It stays a no-op until InitLogger runs.
var Logger = zap.NewNop()

// InitLogger installs a development logger for local runs and a JSON production logger otherwise.
func InitLogger(env string) {
	var (
		l   *zap.Logger
		err error
	)
	if env == "" || env == "local" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	Logger = l

	Logger.Info("✅ Zap logger initialized", zap.String("env", env))
}
