package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/wanderguide/wanderguide/internal/adapters/nats"
	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

// routeSocketMessage is sent by the client.
// {"action":"profile","profile":"car"} switches the travel profile;
// {"action":"refresh"} reloads the itinerary and re-plans.
type routeSocketMessage struct {
	Action  string `json:"action"`
	Profile string `json:"profile"`
}

// routeSocketEvent is sent to the client. Type is "route" for plan results
// (including routing failures) and "error" for rejected client messages.
type routeSocketEvent struct {
	Type string `json:"type"`
	usecases.RouteUpdate
}

// RouteSocketHandler keeps a client's itinerary route up to date. A plan is
// pushed on connect (profile from ?profile=, foot by default), whenever the
// client switches profile, and whenever the itinerary changes. Only the most
// recent request is answered.
func RouteSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Params("id")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		log := slog.Default().With("itinerary_id", id, "remote", c.RemoteAddr().String())

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Info("route socket connected")

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeError := func(code, msg string) {
			_ = writeJSON(routeSocketEvent{Type: "error", RouteUpdate: usecases.RouteUpdate{Code: code, Error: msg}})
		}

		wps, err := deps.Itineraries.Waypoints(ctx, id)
		if err != nil {
			writeError(usecases.RoutingErrorCode(err), err.Error())
			return
		}

		session := usecases.NewRouteSession(ctx, deps.Routes, func(u usecases.RouteUpdate) {
			_ = writeJSON(routeSocketEvent{Type: "route", RouteUpdate: u})
		})
		defer session.Close()

		if q := c.Query("profile"); q != "" {
			if _, err := session.SetProfile(domain.TravelProfile(q)); err != nil {
				writeError("bad_request", "profile must be foot, bike or car")
			}
		}
		session.SetWaypoints(wps)

		reload := func() {
			wps, err := deps.Itineraries.Waypoints(ctx, id)
			if err != nil {
				writeError(usecases.RoutingErrorCode(err), err.Error())
				return
			}
			session.SetWaypoints(wps)
		}

		// Itinerary edits re-plan the route.
		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.ItinerarySubject(id, "*"), func(*nats.Msg) {
				reload()
			})
			if err != nil {
				log.Warn("route socket subscribe", "error", err)
			} else {
				defer func() { _ = sub.Unsubscribe() }()
			}
		}

		// Keep-alive ping
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m routeSocketMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				writeError("bad_request", "invalid JSON")
				continue
			}

			switch m.Action {
			case "profile":
				if _, err := session.SetProfile(domain.TravelProfile(m.Profile)); err != nil {
					writeError("bad_request", "profile must be foot, bike or car")
				}
			case "refresh":
				reload()
			default:
				writeError("bad_request", "unknown action: "+m.Action)
			}
		}

		log.Info("route socket disconnected")
	}
}
