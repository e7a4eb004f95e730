// Package service contains the business logic layer.
//
// Services validate input, consult the quota enforcer, and perform every
// multi-record mutation through runTx so a child record is never left
// unreferenced by its parent.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/store"
)

// runTx is the two-phase helper for multi-record mutations: the child write
// and the parent link performed by fn are committed together, and the first
// is rolled back if the second fails. Domain errors raised by fn are returned
// unchanged; anything else is an unrecoverable store fault.
func runTx(ctx context.Context, st store.Store, logger *slog.Logger, op, message string, fn func(tx store.Store) error) error {
	err := st.InTx(ctx, fn)
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	logger.Error(message, "error", err, "op", op)
	return domain.Internal(err, op, message)
}

// isDomainError reports whether err is an expected business result.
func isDomainError(err error) bool {
	var de *domain.Error
	var ve *domain.ValidationError
	return errors.As(err, &de) || errors.As(err, &ve)
}

// lookupErr converts a store read failure into NotFound or Internal.
func lookupErr(logger *slog.Logger, err error, op, resource, id string) error {
	if store.IsNotFound(err) {
		return domain.NotFound(op, resource, id)
	}
	if isDomainError(err) {
		return err
	}
	logger.Error("failed to load "+resource, "error", err, "op", op, "id", id)
	return domain.Internal(err, op, "Failed to retrieve "+resource)
}

// publisher wraps an events.Publisher so services can emit events without
// caring whether delivery succeeds.
type publisher struct {
	events events.Publisher
	logger *slog.Logger
}

func (p publisher) publish(ctx context.Context, event domain.Event) {
	if p.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish event", "error", err, "type", event.Type, "shop_id", event.ShopID)
	}
}
