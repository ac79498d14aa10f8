package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/domain"
)

func openSQLiteForTest(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{DatabaseDriver: "sqlite", DatabaseURL: "file:" + t.Name() + "?mode=memory&cache=shared"}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(&config.Config{DatabaseDriver: "mysql"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestMigrateSQLiteSkipsGoose(t *testing.T) {
	db, err := Open(openSQLiteForTest(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	}()

	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("goose must not run on sqlite")
	}
	defer func() { gooseUpContext = orig }()

	if IsPostgres(db) {
		t.Fatal("sqlite handle reported as postgres")
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !db.Migrator().HasTable(&domain.Stadium{}) {
		t.Fatal("expected stadium table")
	}
}

func TestSeedStadiumsIsIdempotent(t *testing.T) {
	db, err := Open(openSQLiteForTest(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	}()
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	first, err := SeedStadiums(db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.CreatedStadiums != len(DemoStadiums()) || first.Noop {
		t.Fatalf("unexpected first report: %+v", first)
	}
	second, err := SeedStadiums(db)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !second.Noop || len(second.Stadiums) != len(DemoStadiums()) {
		t.Fatalf("unexpected second report: %+v", second)
	}
	for i := range second.Stadiums {
		if second.Stadiums[i].ID != first.Stadiums[i].ID {
			t.Fatalf("stadium %d changed id on reseed", i)
		}
	}
}
