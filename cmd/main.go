package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PlayHorizon/internal/api"
	"PlayHorizon/internal/config"
	"PlayHorizon/internal/database"
	"PlayHorizon/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bootstrap 加载配置、初始化日志、连接数据库
func bootstrap(configDir string) (*config.Config, *logrus.Logger, *gorm.DB, error) {
	// 1. 加载配置文件
	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	// 2. 初始化日志
	logger := logging.New(cfg.Log)
	logger.Info("配置文件加载成功")

	// 3. 连接数据库（库不存在且开启 auto_create 时先创建）
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("数据库连接成功")
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB, logger *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("关闭数据库连接失败")
	}
}

func runServe(configDir string) error {
	cfg, logger, db, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("数据库表结构迁移失败: %w", err)
		}
		logger.Info("数据库表结构检查完成")
	}

	gin.SetMode(cfg.Server.Mode)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	router, err := api.NewRouter(cfg, db, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("收到退出信号，开始关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已关闭")
	return nil
}

func runMigrate(configDir string) error {
	cfg, logger, db, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("数据库表结构迁移失败: %w", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("数据库表结构迁移完成")
	return nil
}

func main() {
	var configDir string

	root := &cobra.Command{
		Use:           "playhorizon",
		Short:         "PlayHorizon game catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configDir)
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", "./config", "directory containing config.yaml")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configDir)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configDir)
		},
	})

	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
