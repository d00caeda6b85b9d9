// Package stream provides the per-connection transport writers used by the
// subscribe handlers.
//
// The SSE writer frames each event as one server-sent event and emits
// comment frames as keep-alives. The WebSocket writer runs its own write
// goroutine with a bounded send buffer and ping keep-alives, so one slow
// client never blocks the fan-out.
package stream
