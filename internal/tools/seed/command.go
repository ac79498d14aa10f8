package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/database"
	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/service"
	"github.com/minwonhaeso/esc-server/internal/tools/common"
)

const toolName = "seed"

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Demo stadium seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Seed demo stadiums and index them for search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer func() {
					if sqlDB, err := db.DB(); err == nil {
						_ = sqlDB.Close()
					}
				}()

				cache, closeCache := searchCacheFor(cfg)
				defer closeCache()
				search := service.NewStadiumSearchService(repository.NewStadiumDocumentRepository(db), cache, cfg.SearchCacheTTL, slog.Default())
				return Apply(ctx, db, search)
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				details := []string{}
				for _, s := range database.DemoStadiums() {
					details = append(details, fmt.Sprintf("would ensure stadium %q (%s)", s.Name, s.Address))
				}
				details = append(details, "would index every demo stadium as a search document")
				return details, nil
			})
		},
	}
}

type stadiumIndexer interface {
	IndexStadium(ctx context.Context, stadium domain.Stadium) error
}

// Apply seeds the demo stadiums and (re)indexes each of them, so a rerun
// repairs a search index that drifted from the stadium table.
func Apply(ctx context.Context, db *gorm.DB, indexer stadiumIndexer) ([]string, error) {
	report, err := database.SeedStadiums(db)
	if err != nil {
		return nil, err
	}
	for _, s := range report.Stadiums {
		if err := indexer.IndexStadium(ctx, s); err != nil {
			return nil, fmt.Errorf("index stadium %d: %w", s.ID, err)
		}
	}
	return []string{
		fmt.Sprintf("created stadiums: %d", report.CreatedStadiums),
		fmt.Sprintf("indexed stadiums: %d", len(report.Stadiums)),
	}, nil
}

// searchCacheFor bumps the shared Redis cache version when the API runs with
// one, otherwise indexing has no cache to invalidate.
func searchCacheFor(cfg *config.Config) (service.SearchCacheStore, func()) {
	if !cfg.SearchCacheEnabled || !cfg.RedisEnabled {
		return service.NewNoopSearchCacheStore(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	return service.NewRedisSearchCacheStore(client, "stadium_search"), func() { _ = client.Close() }
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
