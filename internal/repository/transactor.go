package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxRepositories are the ports bound to a single database transaction.
type TxRepositories struct {
	Members       MemberRepository
	Verifications EmailVerificationRepository
	Likes         StadiumLikeRepository
	OAuth         OAuthRepository
}

type Transactor interface {
	// WithinTransaction runs fn inside one transaction. On postgres the
	// transaction is serializable.
	WithinTransaction(ctx context.Context, fn func(tx TxRepositories) error) error
}

type GormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &GormTransactor{db: db} }

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(tx TxRepositories) error) error {
	var opts []*sql.TxOptions
	if t.db.Dialector != nil && t.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Members:       NewMemberRepository(tx),
			Verifications: NewEmailVerificationRepository(tx),
			Likes:         NewStadiumLikeRepository(tx),
			OAuth:         NewOAuthRepository(tx),
		})
	}, opts...)
}
