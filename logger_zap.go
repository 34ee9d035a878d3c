package widgetprefs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger wraps z. The level controls what z emits, so it should be the
// same AtomicLevel z was built with; SetLevel adjusts it in place.
func NewZapLogger(z *zap.Logger, level zap.AtomicLevel) Logger {
	return &zapLogger{sugar: z.Sugar(), level: level}
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// SetLevel maps the slog-style level onto zap's level scale.
func (l *zapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(zapLevel(level))
}

func zapLevel(level LogLevel) zapcore.Level {
	switch {
	case level <= LogLevelDebug:
		return zapcore.DebugLevel
	case level <= LogLevelInfo:
		return zapcore.InfoLevel
	case level <= LogLevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
