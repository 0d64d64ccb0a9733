// Package logging holds the process-wide zap logger.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Init builds the global logger. Production mode writes JSON; development
// mode writes console lines. Only errors carry the caller.
func Init(production bool) *zap.Logger {
	var base zap.Config
	if production {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
	}

	enc := base.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	plain := enc
	plain.CallerKey = ""
	withCaller := enc
	withCaller.CallerKey = "caller"

	newEncoder := zapcore.NewConsoleEncoder
	if production {
		newEncoder = zapcore.NewJSONEncoder
	}

	ws := zapcore.Lock(zapcore.AddSync(os.Stderr))
	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(plain), ws, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= base.Level.Level() && l < zapcore.ErrorLevel
		})),
		zapcore.NewCore(newEncoder(withCaller), ws, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})),
	)

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// L returns the global logger, initializing a development logger on first
// use.
func L() *zap.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		return Init(false)
	}
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
