package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iamdejan/visa-tracker-sse/internal/domain"
)

// ErrLagged is returned by Next when the subscriber's unread backlog has
// exceeded the topic capacity and events were dropped. The subscription
// is unusable afterwards; the caller must reconnect to resume.
var ErrLagged = errors.New("subscription lagged behind topic buffer")

// ErrClosed is returned by Next after Close has been called.
var ErrClosed = errors.New("subscription closed")

// Subscription is a per-connection read cursor into a Topic.
//
// Lifecycle: Connected -> Streaming -> Closed or Lagged. There is no
// retry; once terminated the caller opens a new subscription.
type Subscription struct {
	id     uuid.UUID
	topic  *Topic
	cursor uint64
	closed bool          // guarded by topic.mu
	done   chan struct{} // closed by Close to wake a blocked Next
}

func newSubscription(t *Topic, cursor uint64) *Subscription {
	return &Subscription{
		id:     uuid.New(),
		topic:  t,
		cursor: cursor,
		done:   make(chan struct{}),
	}
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Next blocks until the next event is available and returns it. Events
// are delivered in global arrival order. It returns ErrLagged once the
// cursor has fallen out of the buffer, ErrClosed after Close, or the
// context error on cancellation.
func (s *Subscription) Next(ctx context.Context) (domain.Event, error) {
	t := s.topic
	for {
		t.mu.Lock()
		if s.closed {
			t.mu.Unlock()
			return domain.Event{}, ErrClosed
		}
		if s.cursor < t.first {
			missed := t.first - s.cursor
			t.mu.Unlock()
			return domain.Event{}, fmt.Errorf("%w: missed %d events", ErrLagged, missed)
		}
		if s.cursor < t.next {
			event := t.buf[s.cursor%t.capacity]
			s.cursor++
			t.mu.Unlock()
			return event, nil
		}
		wake := t.wake
		t.mu.Unlock()

		select {
		case <-wake:
		case <-s.done:
			return domain.Event{}, ErrClosed
		case <-ctx.Done():
			return domain.Event{}, ctx.Err()
		}
	}
}

// Close tears down the subscription and wakes a blocked Next. It is safe
// to call multiple times.
func (s *Subscription) Close() {
	t := s.topic
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	t.subscribers--
	close(s.done)
}
