package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
)

type BlockRepository interface {
	// CreateBlock returns ErrConflict when the block would overlap another
	// active block and ErrDuplicateNumber when the number is taken.
	CreateBlock(ctx context.Context, b domain.Block) (domain.Block, error)
	UpdateBlock(ctx context.Context, b domain.Block) (domain.Block, error)

	BlockByID(ctx context.Context, id uuid.UUID) (domain.Block, error)
	BlockByNumber(ctx context.Context, number string) (domain.Block, error)

	BlocksInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Block, error)
	ActiveBlocksInRange(ctx context.Context, from, to time.Time) ([]domain.Block, error)
	ActiveBlockExists(ctx context.Context, from, to time.Time) (bool, error)
}
