// Package auth provides request identity context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/bazaar/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// actorContextKey is the key used to store the resolved caller in context.
	actorContextKey contextKey = "actor"
)

// GetActor retrieves the caller from the context.
//
// Returns nil if the request carried no identity.
//
// Usage:
//
//	actor := auth.GetActor(r.Context())
//	if actor == nil {
//	    // Handle anonymous request
//	}
func GetActor(ctx context.Context) *domain.Actor {
	actor, ok := ctx.Value(actorContextKey).(*domain.Actor)
	if !ok {
		return nil
	}
	return actor
}

// GetActorFromRequest is a convenience wrapper around GetActor.
func GetActorFromRequest(r *http.Request) *domain.Actor {
	return GetActor(r.Context())
}

// SetActor stores the caller in the context.
func SetActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
