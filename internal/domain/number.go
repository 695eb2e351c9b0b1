package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	BookingNumberPrefix = "BOOK-"
	BlockNumberPrefix   = "BLOCK-"
)

// NumberGenerator returns a human readable reference with the given prefix.
type NumberGenerator func(prefix string) string

// RandomNumber uses the first eight hex digits of a random UUID.
func RandomNumber(prefix string) string {
	return prefix + strings.ToUpper(uuid.NewString()[:8])
}
