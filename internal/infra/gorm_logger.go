package infra

import (
	"context"
	"errors"
	"time"

	"github.com/GGital/terraform-opstella/internal/logger"

	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

// GormZapLogger GORM 日志适配器（输出到 Zap）
type GormZapLogger struct {
	ZapLogger                 *zap.Logger
	LogLevel                  gormLogger.LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

// LogMode 设置日志级别
func (l *GormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// forContext 附加请求上下文中的 trace_id
func (l *GormZapLogger) forContext(ctx context.Context) *zap.Logger {
	base := l.ZapLogger
	if base == nil {
		base = zap.NewNop()
	}
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		base = base.With(zap.String("trace_id", traceID))
	}
	return base
}

// Info 日志
func (l *GormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		l.forContext(ctx).Sugar().Infof(msg, data...)
	}
}

// Warn 日志
func (l *GormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		l.forContext(ctx).Sugar().Warnf(msg, data...)
	}
}

// Error 日志
func (l *GormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		l.forContext(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace SQL 执行日志
func (l *GormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := l.forContext(ctx)

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil && (!errors.Is(err, gormLogger.ErrRecordNotFound) || !l.IgnoreRecordNotFoundError) {
		fields = append(fields, zap.Error(err))
		log.Error("SQL 执行错误", fields...)
		return
	}

	if l.SlowThreshold > 0 && elapsed > l.SlowThreshold {
		log.Warn("SQL 慢查询", fields...)
		return
	}

	if l.LogLevel >= gormLogger.Info {
		log.Debug("SQL 执行", fields...)
	}
}
