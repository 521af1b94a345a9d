package repo

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// ListUsers returns all users ordered by name.
	ListUsers(ctx context.Context) ([]model.User, error)
}

// RefreshTokenRegistry records which refresh-token ids are currently redeemable
// for which user. An entry exists only between issuance and consumption, and
// never past expiresAt.
type RefreshTokenRegistry interface {
	Insert(ctx context.Context, userID, tokenID string, expiresAt time.Time) error

	// Validate returns ErrInvalidToken when no live entry exists for the pair.
	Validate(ctx context.Context, userID, tokenID string) error

	// Invalidate removes the entry. Removing a missing entry is not an error.
	Invalidate(ctx context.Context, userID, tokenID string) error

	// Consume validates and invalidates in one step. Among concurrent callers
	// for the same pair at most one gets a nil error.
	Consume(ctx context.Context, userID, tokenID string) error
}

// RegistryKey composes the storage key so that a token id is only ever
// matched against the user it was issued to.
func RegistryKey(userID, tokenID string) string {
	return "user-" + userID + "-" + tokenID
}
