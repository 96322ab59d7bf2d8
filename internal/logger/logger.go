package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GGital/terraform-opstella/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// 上下文键
type contextKey string

const (
	traceIDKey   contextKey = "trace_id"
	requestIDKey contextKey = "request_id"
)

// Init 初始化日志系统
func Init(cfg config.LogConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// New 按配置构建 Logger（不修改全局实例）
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "json" {
		encoderConfig = zap.NewProductionEncoderConfig()
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var writer zapcore.WriteSyncer
	switch cfg.OutputPath {
	case "", "stdout":
		writer = zapcore.AddSync(os.Stdout)
	case "stderr":
		writer = zapcore.AddSync(os.Stderr)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		writer = zapcore.AddSync(file)
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, writer, zapLevel)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Get 获取全局 Logger
func Get() *zap.Logger {
	if globalLogger == nil {
		panic("日志系统未初始化，请先调用 Init()")
	}
	return globalLogger
}

// L 获取全局 Logger，未初始化时返回 Nop（测试与库代码使用）
func L() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// WithTraceID 创建带 TraceID 的上下文
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithRequestID 创建带 RequestID 的上下文
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetTraceID 从上下文获取 TraceID
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithContext 创建带上下文信息的 Logger
func WithContext(ctx context.Context) *zap.Logger {
	l := L()
	if traceID := GetTraceID(ctx); traceID != "" {
		l = l.With(zap.String("trace_id", traceID))
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	return l
}

// Info 便捷方法
func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

// Warn 便捷方法
func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

// Error 便捷方法
func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}

// Fatal 便捷方法
func Fatal(msg string, fields ...zap.Field) {
	Get().Fatal(msg, fields...)
}

// Sync 刷新日志缓冲区
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
