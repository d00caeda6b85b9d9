package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/iamdejan/visa-tracker-sse/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

// WSWriter owns all writes to one WebSocket connection. Messages are
// queued on a bounded channel and written by a single goroutine; pings
// double as keep-alives during idle periods.
type WSWriter struct {
	conn         *websocket.Conn
	clock        clockwork.Clock
	pingInterval time.Duration
	sendCh       chan []byte
	done         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewWSWriter starts the write goroutine for conn. pingInterval controls
// how often keep-alive pings are sent while no events flow.
func NewWSWriter(conn *websocket.Conn, clock clockwork.Clock, pingInterval time.Duration) *WSWriter {
	w := &WSWriter{
		conn:         conn,
		clock:        clock,
		pingInterval: pingInterval,
		sendCh:       make(chan []byte, messageBufferSize),
		done:         make(chan struct{}),
	}
	w.configurePongHandler()
	w.wg.Add(1)
	go w.run()
	return w
}

// Send queues a message for delivery. It never blocks; false means the
// send buffer is full and the client is too slow to keep up.
func (w *WSWriter) Send(data []byte) bool {
	select {
	case w.sendCh <- data:
		return true
	default:
		return false
	}
}

// Closed reports whether the write goroutine has exited, either because
// Stop was called or a write to the connection failed.
func (w *WSWriter) Closed() <-chan struct{} {
	return w.done
}

// Stop shuts down the writer and closes the connection. Safe to call
// multiple times.
func (w *WSWriter) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close()
	})
	w.wg.Wait()
}

// StopGraceful sends a close frame with reason before closing.
func (w *WSWriter) StopGraceful(reason string) {
	w.stopOnce.Do(func() {
		close(w.done)

		// The run goroutine must exit before we write the close frame,
		// otherwise two goroutines write the connection concurrently.
		w.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		w.updateWriteDeadline()
		_ = w.conn.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = w.conn.Close()
	})
	w.wg.Wait()
}

func (w *WSWriter) run() {
	ticker := w.clock.NewTicker(w.pingInterval)
	defer ticker.Stop()
	defer w.wg.Done()

	for {
		select {
		case msg, ok := <-w.sendCh:
			if !ok {
				return
			}
			w.updateWriteDeadline()
			if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				w.signalClosed()
				return
			}
		case <-ticker.Chan():
			w.updateWriteDeadline()
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.signalClosed()
				return
			}
			metrics.KeepAlivesSentTotal.WithLabelValues("websocket").Inc()
		case <-w.done:
			return
		}
	}
}

// signalClosed marks the writer dead after a write failure so the handler
// loop stops feeding it.
func (w *WSWriter) signalClosed() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close()
	})
}

func (w *WSWriter) configurePongHandler() {
	w.updateReadDeadline()
	w.conn.SetPongHandler(func(string) error {
		w.updateReadDeadline()
		return nil
	})
}

func (w *WSWriter) updateWriteDeadline() {
	_ = w.conn.SetWriteDeadline(w.clock.Now().Add(writeDeadline))
}

func (w *WSWriter) updateReadDeadline() {
	_ = w.conn.SetReadDeadline(w.clock.Now().Add(pongDeadline))
}
