package migrate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/database"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/tools/common"
)

const toolName = "migrate"

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newCleanupCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "up", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return Up(ctx, cfg, db)
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check migration prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "status", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				sqlDB, err := db.DB()
				if err != nil {
					return nil, err
				}
				if err := sqlDB.PingContext(ctx); err != nil {
					return nil, fmt.Errorf("db ping: %w", err)
				}
				return []string{"database reachable", "driver: " + cfg.DatabaseDriver}, nil
			})
		},
	}
}

func newCleanupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired email verification rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "cleanup", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return Cleanup(ctx, db, time.Now())
			})
		},
	}
}

// Up applies migrations: goose SQL files on Postgres, AutoMigrate on SQLite.
func Up(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	if err := database.MigrateContext(ctx, db); err != nil {
		return nil, err
	}
	strategy := "gorm automigrate"
	if database.IsPostgres(db) {
		strategy = "goose sql migrations"
	}
	return []string{"schema migration applied", "driver: " + cfg.DatabaseDriver, "strategy: " + strategy}, nil
}

func Cleanup(ctx context.Context, db *gorm.DB, now time.Time) ([]string, error) {
	removed, err := repository.NewEmailVerificationRepository(db).CleanupExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("cleanup expired verifications: %w", err)
	}
	return []string{fmt.Sprintf("expired verifications removed: %d", removed)}, nil
}

func execute(opts *options, command string, action common.Action) error {
	if _, err := common.Run(toolName, command, opts.ci, opts.timeout, action); err != nil {
		os.Exit(3)
	}
	return nil
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
