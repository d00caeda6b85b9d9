// Package relay implements the single-topic event fan-out at the heart of
// the server.
//
// A Topic is a fixed-capacity ring buffer shared by all publishers and
// subscribers for the process lifetime. Publishing never blocks; once the
// buffer is full the oldest event is evicted. Each Subscription is a read
// cursor into the ring, anchored at the tail at subscribe time. A
// subscriber whose unread backlog exceeds the buffer capacity receives an
// explicit lag error instead of silently dropped events.
package relay
