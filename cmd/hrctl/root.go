package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/config"
	"gesrh/backend/internal/repository"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/database"
	"gesrh/backend/pkg/jwt"
	applogger "gesrh/backend/pkg/logger"
)

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "gesrh administration tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./config/config.yaml)")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newExportJobsCmd())
	cmd.AddCommand(newImportSkillsCmd())
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

// env 命令运行所需的基础设施
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db, sqlDB: sqlDB}, nil
}

func (e *env) close() {
	_ = e.sqlDB.Close()
	_ = e.logger.Sync()
}

// services 命令行不接 Redis 与实时推送
func (e *env) services() (*service.Service, *repository.Repository) {
	repo := repository.NewRepository(e.db)
	svc := service.NewService(service.Deps{
		Config: e.cfg,
		Repo:   repo,
		JWT:    jwt.NewManager(&e.cfg.Auth),
		Logger: e.logger,
	})
	return svc, repo
}
