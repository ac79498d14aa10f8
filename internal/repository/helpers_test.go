package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/minwonhaeso/esc-server/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Member{},
		&domain.OAuthAccount{},
		&domain.EmailVerification{},
		&domain.Stadium{},
		&domain.StadiumLike{},
		&domain.StadiumDocument{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedMemberForTest(t *testing.T, db *gorm.DB, email string) *domain.Member {
	t.Helper()
	m := &domain.Member{Email: email, Name: "Member " + email, PasswordHash: "hash"}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func seedStadiumForTest(t *testing.T, db *gorm.DB, name, address string, star float64) *domain.Stadium {
	t.Helper()
	s := &domain.Stadium{Name: name, Address: address, StarAvg: star}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed stadium: %v", err)
	}
	return s
}
