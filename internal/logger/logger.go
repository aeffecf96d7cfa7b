package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

//nolint:gochecknoglobals // A single process-wide logger is intentional here.
var (
	globalMu     sync.RWMutex
	globalLogger *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

const (
	// logFileMaxSizeMB is the size threshold (in megabytes) at which the log file is rotated.
	logFileMaxSizeMB = 10
	// logFileMaxBackups is the number of rotated log files to keep.
	logFileMaxBackups = 5
	// logFileMaxAgeDays is the number of days to retain rotated log files.
	logFileMaxAgeDays = 30
)

//nolint:gochecknoinits // The logger must be usable before any configuration is loaded.
func init() {
	globalLogger = New(globalLevel)
}

// New creates a logger that writes human-readable entries to stderr.
// If level is nil, the shared atomic level is used, so the logger
// reacts to later SetLevel calls.
func New(level zapcore.LevelEnabler) *zap.Logger {
	if level == nil {
		level = globalLevel
	}

	core := zapcore.NewCore(
		newConsoleEncoder(),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Logger returns the current global logger.
func Logger() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = l
}

// Level returns the current global log level.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// SetLevel changes the global log level.
// Loggers created by New with a nil level pick the change up immediately.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug entries are currently emitted.
// Hot paths use it to skip building expensive debug payloads.
func IsDebugLevel() bool {
	return globalLevel.Enabled(zapcore.DebugLevel)
}

// ParseLogLevel parses a textual log level ("debug", "info", "warn", ...).
// It is case-insensitive and tolerates surrounding whitespace.
// The second return value reports whether the input was recognized;
// on failure the returned level is info.
func ParseLogLevel(rawLevel string) (zapcore.Level, bool) {
	trimmed := strings.TrimSpace(rawLevel)
	if trimmed == "" {
		return zapcore.InfoLevel, false
	}

	level, err := zapcore.ParseLevel(trimmed)
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// EnableFileSink reconfigures the global logger to also write JSON entries
// to the given file. The file is rotated by size and pruned by age.
func EnableFileSink(path string) {
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(
			newConsoleEncoder(),
			zapcore.Lock(zapcore.AddSync(os.Stderr)),
			globalLevel,
		),
		zapcore.NewCore(
			zapcore.NewJSONEncoder(newEncoderConfig()),
			fileSink,
			globalLevel,
		),
	)

	SetLogger(zap.New(core, zap.AddCaller()))
}

func newConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(newEncoderConfig())
}

func newEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return encoderConfig
}

// sugar returns a sugared view of the global logger with the caller
// adjusted to point at the call site of the package-level helpers.
func sugar() *zap.SugaredLogger {
	return Logger().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// Debug logs a message at debug level.
func Debug(_ context.Context, msg string) {
	sugar().Debug(msg)
}

// Debugf logs a formatted message at debug level.
func Debugf(_ context.Context, format string, args ...any) {
	sugar().Debugf(format, args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(_ context.Context, msg string, kvs ...any) {
	sugar().Debugw(msg, kvs...)
}

// Info logs a message at info level.
func Info(_ context.Context, msg string) {
	sugar().Info(msg)
}

// Infof logs a formatted message at info level.
func Infof(_ context.Context, format string, args ...any) {
	sugar().Infof(format, args...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(_ context.Context, msg string, kvs ...any) {
	sugar().Infow(msg, kvs...)
}

// Warn logs a message at warn level.
func Warn(_ context.Context, msg string) {
	sugar().Warn(msg)
}

// Warnf logs a formatted message at warn level.
func Warnf(_ context.Context, format string, args ...any) {
	sugar().Warnf(format, args...)
}

// WarnKV logs a message with key-value pairs at warn level.
func WarnKV(_ context.Context, msg string, kvs ...any) {
	sugar().Warnw(msg, kvs...)
}

// Error logs a message at error level.
func Error(_ context.Context, msg string) {
	sugar().Error(msg)
}

// Errorf logs a formatted message at error level.
func Errorf(_ context.Context, format string, args ...any) {
	sugar().Errorf(format, args...)
}

// ErrorKV logs a message with key-value pairs at error level.
func ErrorKV(_ context.Context, msg string, kvs ...any) {
	sugar().Errorw(msg, kvs...)
}

// Fatal logs a message at fatal level and exits the process.
func Fatal(_ context.Context, msg string) {
	sugar().Fatal(msg)
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(_ context.Context, format string, args ...any) {
	sugar().Fatalf(format, args...)
}
