package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront/internal/model"
)

// Kind identifies a notification event.
type Kind string

const (
	KindOrderConfirmation    Kind = "order.confirmation"
	KindOrderShipped         Kind = "order.shipped"
	KindOrderDelivered       Kind = "order.delivered"
	KindOrderCancelled       Kind = "order.cancelled"
	KindAppointmentConfirmed Kind = "appointment.confirmed"
	KindAppointmentCompleted Kind = "appointment.completed"
	KindAppointmentCancelled Kind = "appointment.cancelled"
)

// Event is a domain event fanned out to every configured sink.
type Event struct {
	ID            uuid.UUID          `json:"id"`
	Kind          Kind               `json:"kind"`
	OccurredAt    time.Time          `json:"occurred_at"`
	Recipient     string             `json:"recipient,omitempty"`
	RecipientName string             `json:"recipient_name,omitempty"`
	Order         *model.Order       `json:"order,omitempty"`
	Appointment   *model.Appointment `json:"appointment,omitempty"`
}

// Key returns the partitioning key of the event.
func (e Event) Key() string {
	switch {
	case e.Order != nil:
		return e.Order.OrderNumber
	case e.Appointment != nil:
		return e.Appointment.ID.String()
	default:
		return e.ID.String()
	}
}

// OrderEvent builds an event about an order, addressed to its customer email.
func OrderEvent(kind Kind, order *model.Order) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Recipient:  order.CustomerEmail,
		Order:      order,
	}
}

// AppointmentEvent builds an event about an appointment.
func AppointmentEvent(kind Kind, appt *model.Appointment, email, name string) Event {
	return Event{
		ID:            uuid.New(),
		Kind:          kind,
		OccurredAt:    time.Now().UTC(),
		Recipient:     email,
		RecipientName: name,
		Appointment:   appt,
	}
}

// Notifier accepts events for best-effort delivery. Notify never blocks on delivery.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("dispatcher closed")

// Dispatcher fans events out to its sinks, each delivery in its own goroutine.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A dispatcher without sinks drops every event.
func NewDispatcher(timeout time.Duration, logger zerolog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// Notify schedules delivery of ev to every sink and returns immediately.
// Deliveries outlive the caller's context but are bounded by the dispatcher timeout.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn().Str("kind", string(ev.Kind)).Msg("Dispatcher closed, dropping event")
		return
	}

	base := context.WithoutCancel(ctx)
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go d.deliver(base, sink, ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, ev Event) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	if err := sink.Send(ctx, ev); err != nil {
		d.logger.Warn().
			Err(err).
			Str("sink", sink.Name()).
			Str("kind", string(ev.Kind)).
			Str("key", ev.Key()).
			Msg("Notification delivery failed")
		return
	}

	d.logger.Debug().
		Str("sink", sink.Name()).
		Str("kind", string(ev.Kind)).
		Dur("duration", time.Since(start)).
		Msg("Notification delivered")
}

// Close stops accepting events, waits for in-flight deliveries and closes the sinks.
// It gives up waiting when ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	for _, sink := range d.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Discard is a Notifier that drops every event.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, Event) {}
