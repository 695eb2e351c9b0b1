package notify

import (
	"context"
	"log/slog"

	"agenda/backend/internal/domain"
)

// LogNotifier writes notifications to the log. Used when no broker is
// configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) BookingConfirmed(ctx context.Context, b domain.Booking) error {
	n.log.InfoContext(ctx, "booking confirmed notification",
		slog.String("booking_number", b.Number),
		slog.String("customer_email", b.Customer.Email),
		slog.String("service_name", b.ServiceName),
		slog.Time("start_at", b.StartAt),
	)
	return nil
}
