package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

var ErrVerificationNotFound = errors.New("email verification not found")

type EmailVerificationRepository interface {
	Create(ctx context.Context, v *domain.EmailVerification) error
	FindByKey(ctx context.Context, key string) (*domain.EmailVerification, error)
	// ConsumeActive deletes the live record matching key, email and purpose.
	// It returns ErrVerificationNotFound unless exactly that row was removed.
	ConsumeActive(ctx context.Context, key, email, purpose string, now time.Time) error
	DeleteByKey(ctx context.Context, key string) error
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormEmailVerificationRepository struct{ db *gorm.DB }

func NewEmailVerificationRepository(db *gorm.DB) EmailVerificationRepository {
	return &GormEmailVerificationRepository{db: db}
}

func (r *GormEmailVerificationRepository) Create(ctx context.Context, v *domain.EmailVerification) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "email_verification", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "email_verification", "create", "success")
	return nil
}

func (r *GormEmailVerificationRepository) FindByKey(ctx context.Context, key string) (*domain.EmailVerification, error) {
	if key == "" {
		return nil, ErrVerificationNotFound
	}
	var v domain.EmailVerification
	if err := r.db.WithContext(ctx).Where(&domain.EmailVerification{Key: key}).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "email_verification", "find_by_key", "not_found")
			return nil, ErrVerificationNotFound
		}
		observability.RecordRepositoryOperation(ctx, "email_verification", "find_by_key", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "email_verification", "find_by_key", "success")
	return &v, nil
}

func (r *GormEmailVerificationRepository) ConsumeActive(ctx context.Context, key, email, purpose string, now time.Time) error {
	if key == "" || email == "" || purpose == "" {
		return ErrVerificationNotFound
	}
	res := r.db.WithContext(ctx).
		Where(&domain.EmailVerification{Key: key, Email: email, Purpose: purpose}).
		Where("expires_at > ?", now).
		Delete(&domain.EmailVerification{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "email_verification", "consume", "error")
		return res.Error
	}
	if res.RowsAffected != 1 {
		observability.RecordRepositoryOperation(ctx, "email_verification", "consume", "not_found")
		return ErrVerificationNotFound
	}
	observability.RecordRepositoryOperation(ctx, "email_verification", "consume", "success")
	return nil
}

func (r *GormEmailVerificationRepository) DeleteByKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrVerificationNotFound
	}
	res := r.db.WithContext(ctx).Where(&domain.EmailVerification{Key: key}).Delete(&domain.EmailVerification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVerificationNotFound
	}
	return nil
}

func (r *GormEmailVerificationRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.EmailVerification{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "email_verification", "cleanup_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "email_verification", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
