package ports

import (
	"context"
	"time"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishItineraryEvent(ctx context.Context, event *domain.ItineraryEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeItineraryEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ItineraryEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// KeyValueStore persists small values. A non-positive TTL keeps the key forever.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

// RoutingEngine computes a path through ordered points for a travel profile.
// It returns domain.ErrNoRoute when the points cannot be connected and
// domain.ErrRoutingUnavailable when the engine cannot be reached.
type RoutingEngine interface {
	Route(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error)
}

// FlagDirectory resolves a country's flag image URL by country name.
type FlagDirectory interface {
	FlagURL(ctx context.Context, countryName string) (string, error)
}

// MediaStorage is an object store that accepts direct uploads from clients.
type MediaStorage interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	Head(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// MediaWorkflowStarter starts the asynchronous media attach process and
// returns its run identifier.
type MediaWorkflowStarter interface {
	StartAttach(ctx context.Context, req domain.AttachRequest) (string, error)
}
