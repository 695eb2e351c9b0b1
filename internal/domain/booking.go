package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Customer is the contact snapshot stored with a booking.
type Customer struct {
	Name     string `bun:"name,notnull"`
	Email    string `bun:"email,notnull"`
	Phone    string `bun:"phone,notnull"`
	Comments string `bun:"comments"`
}

func (c Customer) Normalize() Customer {
	return Customer{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Comments: strings.TrimSpace(c.Comments),
	}
}

func (c Customer) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return NewValidationError("customer name is required")
	case strings.TrimSpace(c.Email) == "":
		return NewValidationError("customer email is required")
	case !strings.Contains(c.Email, "@"):
		return NewValidationError("customer email is invalid")
	case strings.TrimSpace(c.Phone) == "":
		return NewValidationError("customer phone is required")
	}
	return nil
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID                  uuid.UUID     `bun:"id,pk,type:uuid"`
	Number              string        `bun:"booking_number,notnull"`
	ServiceID           string        `bun:"service_id,notnull"`
	ServiceName         string        `bun:"service_name,notnull"`
	Customer            Customer      `bun:"embed:customer_"`
	StartAt             time.Time     `bun:"start_at,notnull"`
	DurationMinutes     int           `bun:"duration_minutes,notnull"`
	Status              BookingStatus `bun:"status,notnull"`
	PaymentStatus       PaymentStatus `bun:"payment_status,notnull"`
	PaymentPreferenceID string        `bun:"payment_preference_id,nullzero"`
	PaymentID           string        `bun:"payment_id,nullzero"`
	AmountCents         int64         `bun:"amount_cents,notnull"`
	CreatedAt           time.Time     `bun:"created_at,notnull"`
	UpdatedAt           time.Time     `bun:"updated_at,notnull"`
	ConfirmedAt         *time.Time    `bun:"confirmed_at"`
	CancelledAt         *time.Time    `bun:"cancelled_at"`
}

type NewBookingParams struct {
	ID              uuid.UUID
	Number          string
	ServiceID       string
	ServiceName     string
	Customer        Customer
	StartAt         time.Time
	DurationMinutes int
	AmountCents     int64
	Now             time.Time
}

// NewBooking validates p and returns a PENDING booking awaiting payment.
func NewBooking(p NewBookingParams) (Booking, error) {
	serviceID := strings.TrimSpace(p.ServiceID)
	serviceName := strings.TrimSpace(p.ServiceName)
	if serviceID == "" {
		return Booking{}, NewValidationError("service_id is required")
	}
	if serviceName == "" {
		return Booking{}, NewValidationError("service_name is required")
	}
	customer := p.Customer.Normalize()
	if err := customer.Validate(); err != nil {
		return Booking{}, err
	}
	if p.StartAt.IsZero() {
		return Booking{}, NewValidationError("start_at is required")
	}
	if !IsAligned(p.StartAt) {
		return Booking{}, NewValidationError("start_at must be aligned to a 30 minute boundary")
	}
	if err := ValidateDuration(p.DurationMinutes); err != nil {
		return Booking{}, err
	}
	if p.AmountCents < 0 {
		return Booking{}, NewValidationError("amount must not be negative")
	}

	return Booking{
		ID:              p.ID,
		Number:          p.Number,
		ServiceID:       serviceID,
		ServiceName:     serviceName,
		Customer:        customer,
		StartAt:         p.StartAt,
		DurationMinutes: p.DurationMinutes,
		Status:          BookingPending,
		PaymentStatus:   PaymentPending,
		AmountCents:     p.AmountCents,
		CreatedAt:       p.Now,
		UpdatedAt:       p.Now,
	}, nil
}

func (b Booking) EndAt() time.Time {
	return b.StartAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt()}
}

func (b Booking) OccupiesTime() bool {
	return b.Status.Occupies()
}

// SameRequest reports whether o carries the same caller-supplied content as
// b. Used to tell an idempotent replay from a reused key.
func (b Booking) SameRequest(o Booking) bool {
	return b.ServiceID == o.ServiceID &&
		b.ServiceName == o.ServiceName &&
		b.Customer == o.Customer &&
		b.StartAt.Equal(o.StartAt) &&
		b.DurationMinutes == o.DurationMinutes &&
		b.AmountCents == o.AmountCents
}

func (b *Booking) transition(to BookingStatus) error {
	if b.Status == to {
		return NewRuleViolation("booking is already " + strings.ToLower(string(to)))
	}
	if !CanTransition(b.Status, to) {
		return NewRuleViolation("booking cannot move from " + string(b.Status) + " to " + string(to))
	}
	b.Status = to
	return nil
}

func (b *Booking) Cancel(now time.Time) error {
	if err := b.transition(BookingCancelled); err != nil {
		return err
	}
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(BookingCompleted); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

// ConfirmPayment marks the booking paid and confirmed. It returns false with
// no error when the same payment was already applied.
func (b *Booking) ConfirmPayment(paymentID string, now time.Time) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, NewValidationError("payment_id is required")
	}
	if b.PaymentStatus == PaymentPaid {
		if b.PaymentID == paymentID {
			return false, nil
		}
		return false, NewRuleViolation("booking was already paid with a different payment")
	}
	if b.Status == BookingCancelled {
		return false, NewRuleViolation("cannot confirm payment of a cancelled booking")
	}
	if err := b.transition(BookingConfirmed); err != nil {
		return false, err
	}
	b.PaymentID = paymentID
	b.PaymentStatus = PaymentPaid
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return true, nil
}

func (b *Booking) Reschedule(start time.Time, now time.Time) error {
	if b.Status.Terminal() {
		return NewRuleViolation("cannot reschedule a " + strings.ToLower(string(b.Status)) + " booking")
	}
	if !IsAligned(start) {
		return NewValidationError("start_at must be aligned to a 30 minute boundary")
	}
	b.StartAt = start
	b.UpdatedAt = now
	return nil
}

// UpdateCustomer replaces the customer snapshot and returns the changed
// fields as old_/new_ pairs. An empty result means nothing changed.
func (b *Booking) UpdateCustomer(c Customer, now time.Time) (map[string]any, error) {
	if b.Status.Terminal() {
		return nil, NewRuleViolation("cannot update customer of a " + strings.ToLower(string(b.Status)) + " booking")
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	diff := func(field, old, next string) {
		if old != next {
			changes["old_"+field] = old
			changes["new_"+field] = next
		}
	}
	diff("name", b.Customer.Name, c.Name)
	diff("email", b.Customer.Email, c.Email)
	diff("phone", b.Customer.Phone, c.Phone)
	diff("comments", b.Customer.Comments, c.Comments)

	if len(changes) > 0 {
		b.Customer = c
		b.UpdatedAt = now
	}
	return changes, nil
}

func (b *Booking) AttachPaymentPreference(preferenceID string, now time.Time) error {
	preferenceID = strings.TrimSpace(preferenceID)
	if preferenceID == "" {
		return NewValidationError("payment preference id is required")
	}
	if b.Status.Terminal() {
		return NewRuleViolation("cannot attach a payment preference to a " + strings.ToLower(string(b.Status)) + " booking")
	}
	b.PaymentPreferenceID = preferenceID
	b.UpdatedAt = now
	return nil
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
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
