package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Block closes a range of the calendar, e.g. a holiday or a break.
type Block struct {
	bun.BaseModel `bun:"table:blocks"`

	ID          uuid.UUID   `bun:"id,pk,type:uuid"`
	Number      string      `bun:"block_number,notnull"`
	Reason      string      `bun:"reason,notnull"`
	StartAt     time.Time   `bun:"start_at,notnull"`
	EndAt       time.Time   `bun:"end_at,notnull"`
	Status      BlockStatus `bun:"status,notnull"`
	CreatedAt   time.Time   `bun:"created_at,notnull"`
	UpdatedAt   time.Time   `bun:"updated_at,notnull"`
	CancelledAt *time.Time  `bun:"cancelled_at"`
}

func NewBlock(number string, start, end time.Time, reason string, now time.Time) (Block, error) {
	if start.IsZero() || end.IsZero() {
		return Block{}, NewValidationError("start_at and end_at are required")
	}
	if !IsAligned(start) || !IsAligned(end) {
		return Block{}, NewValidationError("block boundaries must be aligned to a 30 minute boundary")
	}
	if !end.After(start) {
		return Block{}, NewValidationError("end_at must be after start_at")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Block{}, NewValidationError("reason is required")
	}

	return Block{
		Number:    number,
		Reason:    reason,
		StartAt:   start,
		EndAt:     end,
		Status:    BlockActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (b Block) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}

func (b Block) OccupiesTime() bool {
	return b.Status == BlockActive
}

func (b *Block) Cancel(now time.Time) error {
	if b.Status == BlockCancelled {
		return NewRuleViolation("block is already cancelled")
	}
	b.Status = BlockCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Block) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	}
	return nil
}
