package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisher_WritesEventType(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewLogPublisher(logger)
	shopID := uuid.New()
	err := p.Publish(context.Background(), domain.Event{
		Type:       domain.EventShopCreated,
		ShopID:     shopID,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	out := buf.String()
	assert.Contains(t, out, "shop.created")
	assert.Contains(t, out, shopID.String())
}
