package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/domain"
)

var ErrOAuthAccountNotFound = errors.New("oauth account not found")

type OAuthRepository interface {
	FindByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthAccount, error)
	Create(ctx context.Context, account *domain.OAuthAccount) error
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type GormOAuthRepository struct{ db *gorm.DB }

func NewOAuthRepository(db *gorm.DB) OAuthRepository { return &GormOAuthRepository{db: db} }

func (r *GormOAuthRepository) FindByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthAccount, error) {
	var a domain.OAuthAccount
	err := r.db.WithContext(ctx).Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOAuthAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormOAuthRepository) Create(ctx context.Context, account *domain.OAuthAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *GormOAuthRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&domain.OAuthAccount{}).Error
}
