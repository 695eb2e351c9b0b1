package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

func bookingNotFound(ref string) error {
	return &domain.NotFoundError{Resource: "booking", Ref: ref}
}

func blockNotFound(ref string) error {
	return &domain.NotFoundError{Resource: "block", Ref: ref}
}

func slotTaken() error {
	return domain.NewConflictError(domain.ConflictBooking, "the requested time collides with another booking")
}

func slotBlocked() error {
	return domain.NewConflictError(domain.ConflictBlock, "the requested time falls inside a blocked period")
}

func blockOverlapsBlock() error {
	return domain.NewConflictError(domain.ConflictBlock, "an active block already exists in that range")
}

func blockOverlapsBooking() error {
	return domain.NewConflictError(domain.ConflictBooking, "an active booking exists in that range")
}

// bookingWriteError maps store sentinels from a booking insert or update to
// the errors callers see. A constraint rejection is the same outcome as a
// failed pre-check.
func bookingWriteError(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return slotTaken()
	case errors.Is(err, store.ErrIdempotencyConflict):
		return domain.NewRuleViolation("idempotency key was already used for a different booking")
	case errors.Is(err, store.ErrNotFound):
		return bookingNotFound("")
	}
	return err
}

func blockWriteError(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return blockOverlapsBlock()
	case errors.Is(err, store.ErrNotFound):
		return blockNotFound("")
	}
	return err
}

func lookupError(err error, notFound func(string) error, id uuid.UUID) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(id.String())
	}
	return err
}

func numberExhausted(prefix string) error {
	return fmt.Errorf("could not allocate a unique %snumber after %d attempts", prefix, numberAttempts)
}
