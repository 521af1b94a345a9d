package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/message/model"
	"github.com/google/uuid"
)

type MessageRepo interface {
	// CreateMessage stores m and returns it with the author loaded.
	CreateMessage(ctx context.Context, m model.Message) (model.Message, error)

	GetMessage(ctx context.Context, id uuid.UUID) (model.Message, error)

	ListMessages(ctx context.Context, f model.Filter) (model.Page, error)

	// UpdateMessage applies column updates and returns the fresh row.
	UpdateMessage(ctx context.Context, id uuid.UUID, fields map[string]any) (model.Message, error)

	DeleteMessage(ctx context.Context, id uuid.UUID) error
}
