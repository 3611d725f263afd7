package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/inventory"
	"storefront/internal/model"
	"storefront/internal/notify"

	"github.com/google/uuid"
)

// ActorCustomer is recorded in the admin notes of customer self-service cancellations.
const ActorCustomer = "customer"

// transition is a requested status change and its optional fulfilment details.
type transition struct {
	target         model.OrderStatus
	trackingNumber *string
	shippingMethod *string
	notes          *string
	actor          string

	// guard may refuse the transition after the order is loaded.
	guard func(order *model.Order) error
}

// UpdateStatus applies an administrative status transition.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, update *model.StatusUpdate, actor string) (*model.Order, error) {
	if update == nil || update.Status == "" {
		return nil, model.NewMissingField("status")
	}

	target, err := model.ParseOrderStatus(update.Status)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, orderID, transition{
		target:         target,
		trackingNumber: update.TrackingNumber,
		shippingMethod: update.ShippingMethod,
		notes:          update.Notes,
		actor:          actor,
	})
}

// Cancel cancels one of the user's own orders while it is PENDING or CONFIRMED.
func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	return s.apply(ctx, orderID, transition{
		target: model.OrderStatusCancelled,
		actor:  ActorCustomer,
		guard: func(order *model.Order) error {
			if !ownedBy(order, userID) {
				return model.ErrOrderNotFound
			}
			if !order.Status.CustomerCancellable() {
				return model.NewIllegalTransition(order.Status)
			}
			return nil
		},
	})
}

// apply runs t against the order in a single transaction and dispatches the
// matching notification after commit.
func (s *orderService) apply(ctx context.Context, orderID uuid.UUID, t transition) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("%w: %v", model.ErrOrderUpdateFailed, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, s.updateFailed(orderID, err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if t.guard != nil {
		if err = t.guard(order); err != nil {
			return nil, err
		}
	}

	previous := order.Status
	now := s.now()

	switch {
	case t.target == model.OrderStatusConfirmed && previous != model.OrderStatusConfirmed:
		var shortfalls []inventory.Shortfall
		if shortfalls, err = s.adjuster.Reserve(ctx, tx, order.Items); err != nil {
			return nil, s.updateFailed(orderID, err)
		}
		if len(shortfalls) > 0 {
			s.logger.Warn().
				Str("order_id", orderID.String()).
				Int("shortfalls", len(shortfalls)).
				Msg("order confirmed with lines not covered by stock")
		}
	case (t.target == model.OrderStatusCancelled || t.target == model.OrderStatusReturned) &&
		previous == model.OrderStatusConfirmed:
		if err = s.adjuster.Restore(ctx, tx, order.Items); err != nil {
			return nil, s.updateFailed(orderID, err)
		}
	}

	order.Status = t.target
	switch t.target {
	case model.OrderStatusShipped:
		order.ShippedAt = &now
		if t.trackingNumber != nil {
			order.TrackingNumber = *t.trackingNumber
		}
		if t.shippingMethod != nil {
			order.ShippingMethod = *t.shippingMethod
		}
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	}

	order.AdminNotes = appendNote(order.AdminNotes, now, previous, t)
	order.UpdatedAt = now

	if err = s.orderRepo.UpdateFulfilment(ctx, tx, order); err != nil {
		return nil, s.updateFailed(orderID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, s.updateFailed(orderID, err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(previous)).
		Str("to", string(t.target)).
		Str("actor", t.actor).
		Msg("order status updated")

	if previous != t.target {
		if kind, ok := transitionEvents[t.target]; ok {
			s.notifier.Notify(ctx, notify.OrderEvent(kind, order))
		}
	}

	return order, nil
}

var transitionEvents = map[model.OrderStatus]notify.Kind{
	model.OrderStatusShipped:   notify.KindOrderShipped,
	model.OrderStatusDelivered: notify.KindOrderDelivered,
	model.OrderStatusCancelled: notify.KindOrderCancelled,
}

func (s *orderService) updateFailed(orderID uuid.UUID, err error) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order status")
	return fmt.Errorf("%w: %v", model.ErrOrderUpdateFailed, err)
}

// appendNote adds the audit line for a transition to the admin notes.
func appendNote(existing string, at time.Time, from model.OrderStatus, t transition) string {
	note := fmt.Sprintf("[%s] Status changed from %s to %s by %s.",
		at.Format(time.RFC3339), from, t.target, t.actor)
	if t.notes != nil && *t.notes != "" {
		note += " " + *t.notes
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
