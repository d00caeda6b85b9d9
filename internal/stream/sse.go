package stream

import (
	"fmt"
	"net/http"
)

// SSEWriter writes server-sent event frames to an HTTP response, flushing
// after every frame so events reach the client immediately.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares the response for an SSE stream: sets the stream
// headers, writes the 200 status line, and returns a writer. It fails if
// the underlying ResponseWriter does not support flushing.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent writes one event frame carrying data and flushes it.
func (s *SSEWriter) WriteEvent(data []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes a comment frame that keeps intermediaries from
// timing out an idle connection.
func (s *SSEWriter) WriteKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keep-alive\n\n"); err != nil {
		return fmt.Errorf("failed to write keep-alive frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}
