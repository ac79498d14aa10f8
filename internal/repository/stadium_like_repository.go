package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

// LikedStadium is a like joined with the stadium it points at.
type LikedStadium struct {
	StadiumID uint
	Name      string
	Address   string
	MainImg   string
	StarAvg   float64
}

type StadiumLikeRepository interface {
	Like(ctx context.Context, memberID, stadiumID uint) error
	Unlike(ctx context.Context, memberID, stadiumID uint) error
	Exists(ctx context.Context, memberID, stadiumID uint) (bool, error)
	ListByMember(ctx context.Context, memberID uint, req PageRequest) (PageResult[LikedStadium], error)
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type GormStadiumLikeRepository struct{ db *gorm.DB }

func NewStadiumLikeRepository(db *gorm.DB) StadiumLikeRepository {
	return &GormStadiumLikeRepository{db: db}
}

func (r *GormStadiumLikeRepository) Like(ctx context.Context, memberID, stadiumID uint) error {
	like := domain.StadiumLike{MemberID: memberID, StadiumID: stadiumID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_like", "like", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "stadium_like", "like", "success")
	return nil
}

func (r *GormStadiumLikeRepository) Unlike(ctx context.Context, memberID, stadiumID uint) error {
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND stadium_id = ?", memberID, stadiumID).
		Delete(&domain.StadiumLike{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_like", "unlike", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "stadium_like", "unlike", "success")
	return nil
}

func (r *GormStadiumLikeRepository) Exists(ctx context.Context, memberID, stadiumID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StadiumLike{}).
		Where("member_id = ? AND stadium_id = ?", memberID, stadiumID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormStadiumLikeRepository) ListByMember(ctx context.Context, memberID uint, req PageRequest) (PageResult[LikedStadium], error) {
	req = req.Normalize()
	base := r.db.WithContext(ctx).Table("stadium_likes AS l").
		Joins("JOIN stadiums AS s ON s.id = l.stadium_id").
		Where("l.member_id = ?", memberID).
		Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_like", "list_by_member", "error")
		return PageResult[LikedStadium]{}, err
	}
	var items []LikedStadium
	err := base.
		Select("s.id AS stadium_id, s.name, s.address, s.main_img, s.star_avg").
		Order("l.created_at desc, l.id desc").
		Offset(req.Offset()).Limit(req.PageSize).
		Scan(&items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_like", "list_by_member", "error")
		return PageResult[LikedStadium]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "stadium_like", "list_by_member", "success")
	return NewPageResult(items, req, total), nil
}

func (r *GormStadiumLikeRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&domain.StadiumLike{}).Error
}
