package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	log = l
}

// Get returns the process-wide structured logger.
func Get() *zap.Logger {
	return log
}

func Sync() {
	_ = log.Sync()
}
