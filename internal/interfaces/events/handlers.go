// Package events wires timer-fired payloads into the lifecycle services.
package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"fuellock/internal/entities"
)

type LockLifecycle interface {
	ExpireLock(ctx context.Context, event entities.LockExpiryDue) error
}

type PriceLifecycle interface {
	ApplyScheduledPrice(ctx context.Context, event entities.PriceChangeDue) error
}

// ExpireLockHandler resolves fired "expiry-booking-<id>" timers. The service
// call is idempotent, which matters under at-least-once delivery.
func ExpireLockHandler(locks LockLifecycle) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"expire_lock_handler",
		func(ctx context.Context, payload *entities.LockExpiryDue) error {
			return locks.ExpireLock(ctx, *payload)
		},
	)
}

// ApplyScheduledPriceHandler resolves fired "price-updater-<id>" timers.
func ApplyScheduledPriceHandler(prices PriceLifecycle) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"apply_scheduled_price_handler",
		func(ctx context.Context, payload *entities.PriceChangeDue) error {
			return prices.ApplyScheduledPrice(ctx, *payload)
		},
	)
}
