package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GGital/terraform-opstella/internal/config"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// OpenDatabase 初始化数据库连接
// driver: sqlite, postgres
func OpenDatabase(driver string, cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	// debug 日志级别下输出全部 SQL，否则只记录慢查询和错误
	logLevel := gormLogger.Warn
	if log.Core().Enabled(zapcore.DebugLevel) {
		logLevel = gormLogger.Info
	}

	gormLog := &GormZapLogger{
		ZapLogger:                 log,
		LogLevel:                  logLevel,
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}

	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取 SQL DB 失败: %w", err)
	}

	// sqlite 单写者，连接池限制为 1 避免 database is locked
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功",
		zap.String("driver", driver),
		zap.String("host", cfg.Host),
		zap.String("database", databaseName(driver, cfg)),
	)

	return db, nil
}

func dialectorFor(driver string, cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建 sqlite 目录失败: %w", err)
			}
		}
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		return postgres.Open(cfg.GetDSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s (可选: sqlite, postgres)", driver)
	}
}

func databaseName(driver string, cfg *config.DatabaseConfig) string {
	if driver == "sqlite" {
		return cfg.Path
	}
	return cfg.DBName
}

// AutoMigrate 执行自动迁移
func AutoMigrate(db *gorm.DB, log *zap.Logger, models ...interface{}) error {
	log.Info("开始执行数据库自动迁移")
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	log.Info("数据库迁移完成")
	return nil
}

// CloseDatabase 关闭数据库连接
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PingDatabase 数据库健康检查
func PingDatabase(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
