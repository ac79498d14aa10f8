package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

type StadiumDocumentRepository interface {
	Upsert(ctx context.Context, doc *domain.StadiumDocument) error
	Delete(ctx context.Context, stadiumID uint) error
	// Search matches documents whose name or address contains any token.
	Search(ctx context.Context, tokens []string, req PageRequest) (PageResult[domain.StadiumDocument], error)
}

type GormStadiumDocumentRepository struct{ db *gorm.DB }

func NewStadiumDocumentRepository(db *gorm.DB) StadiumDocumentRepository {
	return &GormStadiumDocumentRepository{db: db}
}

func (r *GormStadiumDocumentRepository) Upsert(ctx context.Context, doc *domain.StadiumDocument) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stadium_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "main_img", "star_avg", "updated_at"}),
	}).Create(doc).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_document", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "stadium_document", "upsert", "success")
	return nil
}

func (r *GormStadiumDocumentRepository) Delete(ctx context.Context, stadiumID uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.StadiumDocument{}, stadiumID)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_document", "delete", "error")
		return res.Error
	}
	observability.RecordRepositoryOperation(ctx, "stadium_document", "delete", "success")
	return nil
}

func (r *GormStadiumDocumentRepository) Search(ctx context.Context, tokens []string, req PageRequest) (PageResult[domain.StadiumDocument], error) {
	req = req.Normalize()
	if len(tokens) == 0 {
		return NewPageResult[domain.StadiumDocument](nil, req, 0), nil
	}

	conds := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens)*2)
	for _, tok := range tokens {
		pattern := "%" + escapeLike(strings.ToLower(tok)) + "%"
		conds = append(conds, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(address) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	base := r.db.WithContext(ctx).Model(&domain.StadiumDocument{}).Where(strings.Join(conds, " OR "), args...).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_document", "search", "error")
		return PageResult[domain.StadiumDocument]{}, err
	}
	var items []domain.StadiumDocument
	if err := base.Order("star_avg desc, stadium_id asc").Offset(req.Offset()).Limit(req.PageSize).Find(&items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "stadium_document", "search", "error")
		return PageResult[domain.StadiumDocument]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "stadium_document", "search", "success")
	return NewPageResult(items, req, total), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
