package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/exam-coach/internal/history"
)

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Hub broadcasts completed analyses to WebSocket subscribers. It is a
// history.Recorder.
type Hub struct {
	mu   sync.Mutex
	subs map[chan history.Record]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan history.Record]struct{})}
}

// Record fans rec out to every subscriber. Subscribers that are not keeping
// up are disconnected.
func (h *Hub) Record(_ context.Context, rec history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
			delete(h.subs, ch)
			close(ch)
			slog.Warn("dropping slow websocket subscriber")
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() chan history.Record {
	ch := make(chan history.Record, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan history.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// ServeHTTP upgrades the request and streams records as JSON messages.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	slog.Debug("websocket subscriber connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case rec, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, rec)
			cancel()
			if err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
