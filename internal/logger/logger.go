package logger

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handed to every component
type Logger struct {
	*zap.SugaredLogger
}

var (
	fallback     *Logger
	fallbackOnce sync.Once
)

// NewLogger builds a zap logger from cfg.Logging. Debug level switches to the
// human readable development encoder.
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Logging.Level == types.LogLevelDebug {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(string(cfg.Logging.Level)); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.DisableStacktrace = true

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		SugaredLogger: zapLogger.Sugar().With(
			"service", "feeledger",
			"deployment", cfg.Deployment.Mode,
		),
	}, nil
}

// NewNoopLogger discards everything
func NewNoopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// GetLogger returns a process wide logger built from default configuration,
// for code that runs outside dependency injection.
func GetLogger() *Logger {
	fallbackOnce.Do(func() {
		l, err := NewLogger(config.GetDefaultConfig())
		if err != nil {
			l = NewNoopLogger()
		}
		fallback = l
	})
	return fallback
}

// WithContext tags the logger with the request, operator and campus carried
// by ctx. Missing values are left out.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var fields []interface{}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if userID := types.GetUserID(ctx); userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if campusID := types.GetCampusID(ctx); campusID != "" {
		fields = append(fields, "campus_id", campusID)
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

type retryableHTTPLogger struct {
	logger *Logger
}

// GetRetryableHTTPLogger adapts the logger to go-retryablehttp
func (l *Logger) GetRetryableHTTPLogger() *retryableHTTPLogger {
	return &retryableHTTPLogger{logger: l}
}

func (r *retryableHTTPLogger) Printf(format string, v ...interface{}) {
	r.logger.Debugf(format, v...)
}

type ginWriter struct {
	logger *Logger
}

// GetGinWriter adapts the logger to gin's io.Writer based output, used for
// panic recovery traces.
func (l *Logger) GetGinWriter() *ginWriter {
	return &ginWriter{logger: l}
}

func (g *ginWriter) Write(p []byte) (int, error) {
	g.logger.Error(string(p))
	return len(p), nil
}
