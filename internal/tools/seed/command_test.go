package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/minwonhaeso/esc-server/internal/database"
	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/service"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestApplySeedsAndIndexesIdempotently(t *testing.T) {
	db := newSeedTestDB(t)
	search := service.NewStadiumSearchService(repository.NewStadiumDocumentRepository(db), service.NewInMemorySearchCacheStore(), 0, nil)
	ctx := context.Background()
	want := len(database.DemoStadiums())

	details, err := Apply(ctx, db, search)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if details[0] != fmt.Sprintf("created stadiums: %d", want) {
		t.Fatalf("unexpected details: %v", details)
	}

	details, err = Apply(ctx, db, search)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if details[0] != "created stadiums: 0" || details[1] != fmt.Sprintf("indexed stadiums: %d", want) {
		t.Fatalf("unexpected rerun details: %v", details)
	}

	var docs int64
	if err := db.Model(&domain.StadiumDocument{}).Count(&docs).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if int(docs) != want {
		t.Fatalf("expected %d indexed documents, got %d", want, docs)
	}

	page, err := search.Search(ctx, "Jamsil", repository.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Jamsil Futsal Park" {
		t.Fatalf("unexpected search page: %+v", page)
	}
}

type failingIndexer struct{}

func (failingIndexer) IndexStadium(context.Context, domain.Stadium) error {
	return errors.New("index unavailable")
}

func TestApplyPropagatesIndexFailure(t *testing.T) {
	db := newSeedTestDB(t)
	if _, err := Apply(context.Background(), db, failingIndexer{}); err == nil || !strings.Contains(err.Error(), "index unavailable") {
		t.Fatalf("expected index failure, got %v", err)
	}
}
