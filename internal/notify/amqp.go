package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"agenda/backend/internal/domain"
)

// Channel is the part of *amqp.Channel the notifier uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes booking events to a topic exchange.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
	now      func() time.Time
	log      *slog.Logger
}

// DialAMQP connects to the broker and declares a durable topic exchange.
func DialAMQP(url, exchange string, log *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	n := NewAMQPNotifier(ch, exchange, log)
	n.conn = conn
	return n, nil
}

func NewAMQPNotifier(ch Channel, exchange string, log *slog.Logger) *AMQPNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &AMQPNotifier{
		ch:       ch,
		exchange: exchange,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With(slog.String("component", "notify")),
	}
}

func (n *AMQPNotifier) BookingConfirmed(ctx context.Context, b domain.Booking) error {
	body, err := json.Marshal(NewBookingConfirmedEvent(b))
	if err != nil {
		return err
	}
	err = n.ch.PublishWithContext(ctx, n.exchange, RoutingBookingConfirmed, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID.String(),
		Timestamp:    n.now(),
		Type:         RoutingBookingConfirmed,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", RoutingBookingConfirmed, err)
	}
	n.log.DebugContext(ctx, "booking event published",
		slog.String("routing_key", RoutingBookingConfirmed),
		slog.String("booking_number", b.Number),
	)
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
