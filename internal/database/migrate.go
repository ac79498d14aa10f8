package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

//go:embed migrations/*.sql
var migrations embed.FS

var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the versioned SQL migrations on Postgres and falls back to
// AutoMigrate for SQLite, which is only used for local runs and tests.
func Migrate(db *gorm.DB) error {
	return MigrateContext(context.Background(), db)
}

func MigrateContext(ctx context.Context, db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "migrate", time.Since(start))
	}()

	if !IsPostgres(db) {
		if err := AutoMigrate(db); err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
			return err
		}
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "success")
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return fmt.Errorf("resolve sql db: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, sqlDB, "migrations"); err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return fmt.Errorf("apply migrations: %w", err)
	}
	observability.RecordDatabaseStartupEvent(ctx, "migrate", "success")
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Member{},
		&domain.OAuthAccount{},
		&domain.EmailVerification{},
		&domain.Stadium{},
		&domain.StadiumLike{},
		&domain.StadiumDocument{},
	)
}
