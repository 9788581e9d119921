package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

const (
	itineraryStream  = "ITINERARY_EVENTS"
	itinerarySubject = "guide.itinerary"
)

// ItinerarySubject is the subject an itinerary's events of the given kind
// are published on. Use "*" as kind to match all of them.
func ItinerarySubject(itineraryID, kind string) string {
	return itinerarySubject + "." + itineraryID + "." + kind
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// ensureStream creates the itinerary stream or brings an existing one up to
// date. Publisher and subscriber both call it, so either may start first.
func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:       itineraryStream,
		Subjects:   []string{itinerarySubject + ".>"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.StreamInfo(itineraryStream); err == nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("update stream %s: %w", itineraryStream, err)
		}
		return nil
	}
	if _, err := js.AddStream(&cfg); err != nil {
		return fmt.Errorf("add stream %s: %w", itineraryStream, err)
	}
	return nil
}

// PublishItineraryEvent publishes on guide.itinerary.<id>.<kind>. The message
// ID lets JetStream drop a retried publish of the same event.
func (p *Publisher) PublishItineraryEvent(ctx context.Context, ev *domain.ItineraryEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msgID := fmt.Sprintf("%s.%s.%d", ev.ItineraryID, ev.Kind, ev.OccurredAt.UnixNano())
	_, err = p.js.Publish(ItinerarySubject(ev.ItineraryID, ev.Kind), data,
		nats.Context(ctx), nats.MsgId(msgID))
	if err != nil {
		return fmt.Errorf("publish %s event for %s: %w", ev.Kind, ev.ItineraryID, err)
	}
	return nil
}

// Conn exposes the underlying connection for plain subscriptions.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("wanderguide"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
