// Package event defines the domain events emitted by the use cases and the
// publisher port the infrastructure implements.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsreader/internal/observability/metrics"
)

type Type string

const (
	FavoriteAdded    Type = "favorite.added"
	FavoriteRemoved  Type = "favorite.removed"
	FavoritesCleared Type = "favorites.cleared"
	FeedRefreshed    Type = "feed.refreshed"
	CacheCleared     Type = "cache.cleared"
	SourcesRefreshed Type = "sources.refreshed"
)

// Event is a fact that already happened. Key groups related events
// (article URL, country) so consumers see them in order.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a random ID and the current UTC time.
func New(t Type, key string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Emit publishes e and only logs a failure. A nil publisher is allowed.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	err := p.Publish(ctx, e)
	metrics.RecordEventPublished(string(e.Type), err)
	if err != nil {
		slog.Warn("event publish failed",
			slog.String("event_type", string(e.Type)),
			slog.String("event_id", e.ID),
			slog.Any("error", err))
	}
}
