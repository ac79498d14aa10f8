package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

var ErrStadiumNotFound = errors.New("stadium not found")

type StadiumRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Stadium, error)
	List(ctx context.Context) ([]domain.Stadium, error)
}

type GormStadiumRepository struct{ db *gorm.DB }

func NewStadiumRepository(db *gorm.DB) StadiumRepository { return &GormStadiumRepository{db: db} }

func (r *GormStadiumRepository) FindByID(ctx context.Context, id uint) (*domain.Stadium, error) {
	var s domain.Stadium
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "stadium", "find_by_id", "not_found")
			return nil, ErrStadiumNotFound
		}
		observability.RecordRepositoryOperation(ctx, "stadium", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "stadium", "find_by_id", "success")
	return &s, nil
}

func (r *GormStadiumRepository) List(ctx context.Context) ([]domain.Stadium, error) {
	var stadiums []domain.Stadium
	err := r.db.WithContext(ctx).Order("id asc").Find(&stadiums).Error
	return stadiums, err
}
