package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrDuplicateEmail = errors.New("member email already exists")
)

//go:generate mockgen -destination=gomock/mock_repositories.go -package=gomock github.com/minwonhaeso/esc-server/internal/repository MemberRepository,StadiumRepository,StadiumLikeRepository

type MemberRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Member, error)
	FindByID(ctx context.Context, id uint) (*domain.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, member *domain.Member) error
	UpdateFields(ctx context.Context, email string, updates map[string]any) error
	DeleteByEmail(ctx context.Context, email string) error
}

type GormMemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) MemberRepository { return &GormMemberRepository{db: db} }

func (r *GormMemberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var m domain.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "member", "find_by_email", "not_found")
			return nil, ErrMemberNotFound
		}
		observability.RecordRepositoryOperation(ctx, "member", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "member", "find_by_email", "success")
	return &m, nil
}

func (r *GormMemberRepository) FindByID(ctx context.Context, id uint) (*domain.Member, error) {
	var m domain.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Member{}).Where("email = ?", email).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "member", "exists_by_email", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "member", "exists_by_email", "success")
	return count > 0, nil
}

func (r *GormMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if IsUniqueViolation(err) {
			observability.RecordRepositoryOperation(ctx, "member", "create", "conflict")
			return ErrDuplicateEmail
		}
		observability.RecordRepositoryOperation(ctx, "member", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "member", "create", "success")
	return nil
}

func (r *GormMemberRepository) UpdateFields(ctx context.Context, email string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Member{}).Where("email = ?", email).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "member", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "member", "update", "not_found")
		return ErrMemberNotFound
	}
	observability.RecordRepositoryOperation(ctx, "member", "update", "success")
	return nil
}

func (r *GormMemberRepository) DeleteByEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&domain.Member{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "member", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "member", "delete", "not_found")
		return ErrMemberNotFound
	}
	observability.RecordRepositoryOperation(ctx, "member", "delete", "success")
	return nil
}

// IsUniqueViolation reports a unique-constraint failure from postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsSerializationFailure reports a postgres 40001 abort.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}
