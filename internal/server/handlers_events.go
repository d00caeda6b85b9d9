package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iamdejan/visa-tracker-sse/internal/domain"
	apperrors "github.com/iamdejan/visa-tracker-sse/internal/errors"
	"github.com/iamdejan/visa-tracker-sse/internal/logging"
	"github.com/iamdejan/visa-tracker-sse/internal/metrics"
	"github.com/iamdejan/visa-tracker-sse/internal/relay"
	"github.com/iamdejan/visa-tracker-sse/internal/stream"
)

// maxEventBodySize bounds the publish request body. Events are tiny; a
// larger body is never legitimate.
const maxEventBodySize = 64 * 1024

type eventData struct {
	Message string `json:"message"`
}

type eventResponse struct {
	Data *eventData `json:"data,omitempty"`
}

// handleSendEvent validates the request and publishes the event to the
// topic. Validation failures map to structured 400 responses; publishing
// itself cannot fail, only report zero listeners.
func (s *Server) handleSendEvent(c echo.Context) error {
	req := c.Request()

	if !hasJSONContentType(req) {
		return apperrors.MissingJSONContentType()
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxEventBodySize))
	if err != nil {
		return apperrors.Buffer(err)
	}

	event, appErr := decodeEvent(body)
	if appErr != nil {
		return appErr
	}

	if !event.PercentageInRange() {
		return apperrors.RangeExceeded(*event.Percentage)
	}

	listeners := s.topic.Publish(event)
	metrics.PublishFanout.Observe(float64(listeners))

	if listeners == 0 {
		metrics.EventsPublishedTotal.WithLabelValues("unheard").Inc()
		return c.JSON(http.StatusAccepted, eventResponse{
			Data: &eventData{Message: "Event accepted, but no listeners"},
		})
	}

	metrics.EventsPublishedTotal.WithLabelValues("delivered").Inc()
	return c.JSON(http.StatusOK, eventResponse{
		Data: &eventData{Message: fmt.Sprintf("Event sent to %d listeners!", listeners)},
	})
}

func hasJSONContentType(req *http.Request) bool {
	contentType := req.Header.Get(echo.HeaderContentType)
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return strings.EqualFold(mediaType, echo.MIMEApplicationJSON)
}

// decodeEvent parses the body, distinguishing syntax errors from schema
// mismatches so the client gets a precise error code.
func decodeEvent(body []byte) (domain.Event, *apperrors.Error) {
	var event domain.Event

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&event); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr),
			errors.Is(err, io.ErrUnexpectedEOF),
			errors.Is(err, io.EOF):
			return domain.Event{}, apperrors.JSONValidity(err)
		case errors.As(err, &typeErr):
			message := fmt.Sprintf("Invalid type for field %q: expected %s", typeErr.Field, typeErr.Type)
			return domain.Event{}, apperrors.JSONDeserialization(message, err)
		default:
			// Unknown fields and other decode failures are schema errors.
			return domain.Event{}, apperrors.JSONDeserialization(err.Error(), err)
		}
	}

	if !event.HasPayload() {
		return domain.Event{}, apperrors.JSONDeserialization("Request body must contain a percentage or a message", nil)
	}

	return event, nil
}

// handleSubscribeSSE upgrades the request to a server-sent event stream
// and forwards every published event until the client disconnects or the
// subscription lags out.
func (s *Server) handleSubscribeSSE(c echo.Context) error {
	ip := c.RealIP()
	if reason, ok := s.acquireStreamSlot(ip); !ok {
		return rejectStream(c, reason)
	}
	defer s.limits.Release(ip)

	sub := s.topic.Subscribe()
	defer sub.Close()

	logger := logging.WithSubscription(sub.ID())
	logger.Debug("Subscriber connected",
		"transport", "sse",
		"remote_ip", ip,
		"user_agent", c.Request().UserAgent(),
	)

	metrics.SubscribersConnected.WithLabelValues("sse").Inc()
	defer metrics.SubscribersConnected.WithLabelValues("sse").Dec()

	writer, err := stream.NewSSEWriter(c.Response())
	if err != nil {
		return apperrors.Unknown(err)
	}

	// Cancelled on client disconnect, and on handler return so the pull
	// goroutine never outlives the stream.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Pull events on a separate goroutine so the main loop can multiplex
	// deliveries with keep-alives and cancellation.
	events := make(chan domain.Event)
	subErr := make(chan error, 1)
	go func() {
		for {
			event, err := sub.Next(ctx)
			if err != nil {
				subErr <- err
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := s.clock.NewTicker(s.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Subscriber disconnected", "transport", "sse")
			return nil

		case err := <-subErr:
			if errors.Is(err, relay.ErrLagged) {
				logger.Error("Subscriber lagged, closing stream", "transport", "sse", "error", err)
				metrics.SubscriberLagTotal.WithLabelValues("sse").Inc()
			}
			return nil

		case event := <-events:
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal event", "error", err)
				continue
			}
			if err := writer.WriteEvent(data); err != nil {
				logger.Debug("Write failed, closing stream", "transport", "sse", "error", err)
				return nil
			}

		case <-ticker.Chan():
			if err := writer.WriteKeepAlive(); err != nil {
				logger.Debug("Keep-alive failed, closing stream", "transport", "sse", "error", err)
				return nil
			}
			metrics.KeepAlivesSentTotal.WithLabelValues("sse").Inc()
		}
	}
}

func (s *Server) acquireStreamSlot(ip string) (LimitReason, bool) {
	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.ConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		slog.Warn("Streaming connection rejected", "remote_ip", ip, "reason", reason)
		return reason, false
	}
	return "", true
}

func rejectStream(c echo.Context, reason LimitReason) error {
	status := http.StatusServiceUnavailable
	if reason == LimitReasonRate || reason == LimitReasonPerIP {
		status = http.StatusTooManyRequests
	}
	return echo.NewHTTPError(status, fmt.Sprintf("connection rejected: %s", reason))
}
