// Package logger holds the process-wide zap logger.
package logger

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.Logger

// Init builds the global logger. Set LOG_DEV to any value for readable
// console output during local runs.
func Init() {
	if os.Getenv("LOG_DEV") != "" {
		Log = zap.Must(zap.NewDevelopment())
		return
	}
	Log = zap.Must(zap.NewProduction())
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
