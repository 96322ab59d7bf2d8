package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/GGital/terraform-opstella/api"
	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/config"
	"github.com/GGital/terraform-opstella/internal/logger"
	"github.com/GGital/terraform-opstella/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. 统一加载 .env，便于集中管理 APP_* 环境变量
	loadEnvFile()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 1. 加载配置（APP_CONFIG 可指定配置文件路径）
	cfg, err := config.Load(env, os.Getenv("APP_CONFIG"))
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage", cfg.Storage.Backend),
	)

	// 3. 初始化审批存储
	ctx := context.Background()
	backend, err := storage.New(ctx, cfg, logger.Get())
	if err != nil {
		logger.Fatal("初始化审批存储失败", zap.Error(err))
	}

	svc := approval.NewService(backend,
		approval.WithLogger(logger.Get().Named("approval")),
		approval.WithStrictTransitions(cfg.Approval.StrictTransitions),
	)
	if err := svc.Init(ctx); err != nil {
		logger.Fatal("初始化审批数据失败", zap.Error(err))
	}

	// 4. 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 5. 创建路由
	router := api.SetupRouter(svc, cfg)

	// 6. 创建 HTTP 服务器
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 7. 启动服务器（goroutine）
	go func() {
		logger.Info("HTTP 服务器启动",
			zap.Int("port", cfg.Server.Port),
			zap.String("backend", svc.BackendName()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 8. 优雅关闭
	gracefulShutdown(server, backend)
}

// loadEnvFile 依次尝试加载当前目录及上级目录的 .env 文件
func loadEnvFile() {
	if path := resolveEnvPath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("加载环境变量文件 %s 失败: %v\n", path, err)
		} else {
			fmt.Printf("已加载环境变量文件: %s\n", path)
		}
	} else {
		fmt.Println("未找到 .env 文件，将仅使用系统环境变量和 config/* 配置")
	}
}

// resolveEnvPath 尝试从当前工作目录、可执行文件目录向上查找 .env
func resolveEnvPath() string {
	for _, path := range collectEnvCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func collectEnvCandidates() []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	traverse := func(start string) {
		dir := filepath.Clean(start)
		for i := 0; i < 8; i++ {
			if dir == "" || dir == string(filepath.Separator) || dir == "." {
				break
			}
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if wd, err := os.Getwd(); err == nil {
		traverse(wd)
	}
	if exe, err := os.Executable(); err == nil {
		traverse(filepath.Dir(exe))
	}

	return candidates
}

// gracefulShutdown 优雅关闭
func gracefulShutdown(server *http.Server, backend approval.Backend) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭存储连接（数据库 / Redis）
	if closer, ok := backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("存储关闭异常", zap.Error(err))
		}
	}

	logger.Info("服务器已安全关闭")
}
