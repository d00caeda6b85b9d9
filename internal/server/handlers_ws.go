package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iamdejan/visa-tracker-sse/internal/logging"
	"github.com/iamdejan/visa-tracker-sse/internal/metrics"
	"github.com/iamdejan/visa-tracker-sse/internal/relay"
	"github.com/iamdejan/visa-tracker-sse/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is handled by the CORS middleware for the rest of the
	// API; the mirror stream accepts any origin, matching the SSE endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSubscribeWS mirrors the SSE stream over a WebSocket: one text
// message per event, ping keep-alives, closed on disconnect or lag.
func (s *Server) handleSubscribeWS(c echo.Context) error {
	ip := c.RealIP()
	if reason, ok := s.acquireStreamSlot(ip); !ok {
		return rejectStream(c, reason)
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Debug("WebSocket upgrade failed", "remote_ip", ip, "error", err)
		return nil
	}

	writer := stream.NewWSWriter(conn, s.clock, s.config.KeepAliveInterval)
	defer writer.Stop()

	sub := s.topic.Subscribe()
	defer sub.Close()

	logger := logging.WithSubscription(sub.ID())
	logger.Debug("Subscriber connected", "transport", "websocket", "remote_ip", ip)

	metrics.SubscribersConnected.WithLabelValues("websocket").Inc()
	defer metrics.SubscribersConnected.WithLabelValues("websocket").Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Read pump: the client never sends data, but reading is what surfaces
	// close frames and pong responses.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		event, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, relay.ErrLagged) {
				logger.Error("Subscriber lagged, closing stream", "transport", "websocket", "error", err)
				metrics.SubscriberLagTotal.WithLabelValues("websocket").Inc()
				writer.StopGraceful("event stream lagged")
			}
			logger.Debug("Subscriber disconnected", "transport", "websocket")
			return nil
		}

		data, err := json.Marshal(event)
		if err != nil {
			logger.Error("Failed to marshal event", "error", err)
			continue
		}

		if !writer.Send(data) {
			logger.Warn("Disconnecting slow client", "transport", "websocket")
			return nil
		}

		select {
		case <-writer.Closed():
			return nil
		default:
		}
	}
}
