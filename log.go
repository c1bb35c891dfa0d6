package birch

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger receives warnings for programmer errors and debug-mode frame stats.
var logger = newDefaultLogger(zapcore.WarnLevel)

// logLevel backs the default logger so RunConfig.LogLevel can adjust it.
var logLevel zap.AtomicLevel

func newDefaultLogger(level zapcore.Level) *zap.Logger {
	logLevel = zap.NewAtomicLevelAt(level)
	cfg := zap.Config{
		Level:             logLevel,
		Development:       false,
		Encoding:          "console",
		EncoderConfig:     zap.NewDevelopmentEncoderConfig(),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("birch")
}

// SetLogger replaces the package logger. A nil logger silences all output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return logger
}

// SetLogLevel adjusts the level of the default logger. It has no effect on
// loggers installed with SetLogger.
func SetLogLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	logLevel.SetLevel(lvl)
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return lvl, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}

// warn reports a programmer error. The offending call is ignored by the
// caller; in debug mode it panics instead so the mistake surfaces at once.
func warn(msg string, fields ...zap.Field) {
	if globalDebug {
		panic("birch debug: " + msg)
	}
	logger.Warn(msg, fields...)
}

func nodeField(n *Node) zap.Field {
	if n == nil {
		return zap.String("node", "<nil>")
	}
	return zap.Dict("node", zap.String("name", n.Name), zap.Uint32("id", n.ID))
}
