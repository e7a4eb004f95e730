package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestActorContext(t *testing.T) {
	assert.Nil(t, GetActor(context.Background()))

	actor := &domain.Actor{Account: &domain.Account{Subject: "user-1"}}
	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(SetActor(req.Context(), actor))

	assert.Same(t, actor, GetActorFromRequest(req))
}
