package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	// Tests and tools that never call Init still get a working logger.
	Log = zap.NewNop().Sugar()
}
