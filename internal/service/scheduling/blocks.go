package scheduling

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/service/audit"
	"agenda/backend/internal/store"
)

type CreateBlockInput struct {
	StartAt time.Time
	EndAt   time.Time
	Reason  string
	Actor   domain.Actor
}

// CreateBlock closes [StartAt, EndAt). The range may not overlap another
// active block or any occupying booking.
func (s *Service) CreateBlock(ctx context.Context, in CreateBlockInput) (out domain.Block, err error) {
	ctx, span := s.startSpan(ctx, "CreateBlock")
	defer func() { endSpan(span, err) }()

	candidate, err := domain.NewBlock("", in.StartAt.In(s.loc), in.EndAt.In(s.loc), in.Reason, s.now())
	if err != nil {
		return domain.Block{}, err
	}
	actor := actorOr(in.Actor, domain.ActorAdmin)

	err = withNumberRetry(domain.BlockNumberPrefix, func() error {
		return s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, _ *audit.Recorder) error {
			blocked, err := tx.ActiveBlockExists(ctx, candidate.StartAt, candidate.EndAt)
			if err != nil {
				return err
			}
			if blocked {
				return blockOverlapsBlock()
			}
			free, err := tx.IsSlotAvailable(ctx, candidate.Interval(), uuid.Nil)
			if err != nil {
				return err
			}
			if !free {
				return blockOverlapsBooking()
			}

			number, err := s.freeNumber(domain.BlockNumberPrefix, func(n string) error {
				_, err := tx.BlockByNumber(ctx, n)
				return err
			})
			if err != nil {
				return err
			}
			candidate.Number = number

			out, err = tx.CreateBlock(ctx, candidate)
			if err != nil {
				return blockWriteError(err)
			}
			return nil
		})
	})
	if err != nil {
		return domain.Block{}, err
	}

	s.log.Info("block created",
		slog.String("block_number", out.Number),
		slog.Time("start_at", out.StartAt),
		slog.Time("end_at", out.EndAt),
		slog.String("actor", string(actor)),
	)
	return out, nil
}

func (s *Service) CancelBlock(ctx context.Context, id uuid.UUID, actor domain.Actor) (out domain.Block, err error) {
	ctx, span := s.startSpan(ctx, "CancelBlock")
	defer func() { endSpan(span, err) }()

	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, _ *audit.Recorder) error {
		b, err := tx.BlockByID(ctx, id)
		if err != nil {
			return lookupError(err, blockNotFound, id)
		}
		if err := b.Cancel(s.now()); err != nil {
			return err
		}
		out, err = tx.UpdateBlock(ctx, b)
		if err != nil {
			return blockWriteError(err)
		}
		return nil
	})
	if err != nil {
		return domain.Block{}, err
	}

	s.log.Info("block cancelled",
		slog.String("block_number", out.Number),
		slog.String("actor", string(actorOr(actor, domain.ActorAdmin))),
	)
	return out, nil
}
