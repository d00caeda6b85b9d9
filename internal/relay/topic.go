package relay

import (
	"sync"

	"github.com/iamdejan/visa-tracker-sse/internal/domain"
)

// DefaultCapacity is the buffer size used when none is configured.
const DefaultCapacity = 800

// Topic is a process-wide, fixed-capacity ring buffer of the most recent
// events. All mutation happens under a single mutex; waiting subscribers
// are woken by replacing the wake channel on every publish, which keeps
// blocking reads cancellable via context.
type Topic struct {
	mu          sync.Mutex
	buf         []domain.Event
	capacity    uint64
	first       uint64 // sequence number of the oldest retained event
	next        uint64 // sequence number assigned to the next publish
	subscribers int
	wake        chan struct{} // closed and replaced on every publish
}

// NewTopic creates a topic retaining at most capacity events. A
// non-positive capacity falls back to DefaultCapacity.
func NewTopic(capacity int) *Topic {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Topic{
		buf:      make([]domain.Event, capacity),
		capacity: uint64(capacity),
		wake:     make(chan struct{}),
	}
}

// Publish enqueues the event and wakes all waiting subscribers. It never
// blocks and never fails. The return value is the number of subscriptions
// active at the moment of publish; zero means the event was buffered but
// nobody is listening.
func (t *Topic) Publish(event domain.Event) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf[t.next%t.capacity] = event
	t.next++
	if t.next-t.first > t.capacity {
		t.first = t.next - t.capacity
	}

	close(t.wake)
	t.wake = make(chan struct{})

	return t.subscribers
}

// Subscribe creates a new subscription anchored at the current tail. The
// subscription does not replay events published before this call. The
// caller must Close the subscription when done.
func (t *Topic) Subscribe() *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subscribers++
	return newSubscription(t, t.next)
}

// ListenerCount returns the number of currently active subscriptions.
func (t *Topic) ListenerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subscribers
}

// Capacity returns the fixed buffer capacity.
func (t *Topic) Capacity() int {
	return int(t.capacity)
}
