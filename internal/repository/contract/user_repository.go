package contract

import (
	"context"

	"billing-engine-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FindByIDForUpdate locks the user row. Transactions that guard per-user
	// uniqueness take it first, so they serialize even when the user has no
	// rows of the guarded kind yet.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
