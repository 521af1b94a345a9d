package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/message/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepo struct {
	db *gorm.DB
}

func NewPostgresMessageRepo(db *gorm.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

func (p *PostgresMessageRepo) CreateMessage(ctx context.Context, m model.Message) (model.Message, error) {
	if err := p.db.WithContext(ctx).Omit("Author").Create(&m).Error; err != nil {
		return model.Message{}, customErrors.WrapInternal(err, "CreateMessage")
	}
	return p.GetMessage(ctx, m.ID)
}

func (p *PostgresMessageRepo) GetMessage(ctx context.Context, id uuid.UUID) (model.Message, error) {
	var m model.Message
	res := p.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&m)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Message{}, customErrors.NotFound("message not found")
	}
	if err := res.Error; err != nil {
		return model.Message{}, customErrors.WrapInternal(err, "GetMessage")
	}
	return m, nil
}

// ListMessages returns newest-first messages matching f. Ids are UUIDv7, so
// ordering by id is ordering by creation time and the last id is the cursor.
func (p *PostgresMessageRepo) ListMessages(ctx context.Context, f model.Filter) (model.Page, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = model.DefaultPageSize
	}

	q := p.db.WithContext(ctx).Model(&model.Message{}).Preload("Author")
	if f.Cursor != uuid.Nil {
		q = q.Where("id < ?", f.Cursor)
	}
	if f.Tag != "" {
		q = q.Where("tag = ?", f.Tag)
	}
	if f.AuthorID != uuid.Nil {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at <= ?", f.To)
	}

	var msgs []model.Message
	if err := q.Order("id DESC").Limit(limit + 1).Find(&msgs).Error; err != nil {
		return model.Page{}, customErrors.WrapInternal(err, "ListMessages")
	}

	page := model.Page{Messages: msgs}
	if len(msgs) > limit {
		page.HasMore = true
		page.Messages = msgs[:limit]
	}
	if n := len(page.Messages); n > 0 {
		last := page.Messages[n-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

func (p *PostgresMessageRepo) UpdateMessage(ctx context.Context, id uuid.UUID, fields map[string]any) (model.Message, error) {
	res := p.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Updates(fields)
	if err := res.Error; err != nil {
		return model.Message{}, customErrors.WrapInternal(err, "UpdateMessage")
	}
	if res.RowsAffected == 0 {
		return model.Message{}, customErrors.NotFound("message not found")
	}
	return p.GetMessage(ctx, id)
}

func (p *PostgresMessageRepo) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&model.Message{}, "id = ?", id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteMessage")
	}
	if res.RowsAffected == 0 {
		return customErrors.NotFound("message not found")
	}

	return nil
}
