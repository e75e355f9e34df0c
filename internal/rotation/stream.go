package rotation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/lead-rotation/internal"
)

// StreamHandler pushes rotation state over Server-Sent Events. It polls the
// store on a fixed interval and only emits when lastUpdated moved, with a
// periodic heartbeat to keep intermediaries from closing the connection.
// Transport convenience only; clients fall back to plain GET polling.
type StreamHandler struct {
	Service           *Service
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

func NewStreamHandler(svc *Service, pollInterval, heartbeatInterval time.Duration) *StreamHandler {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	return &StreamHandler{
		Service:           svc,
		PollInterval:      pollInterval,
		HeartbeatInterval: heartbeatInterval,
	}
}

type streamMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	poll := time.NewTicker(h.PollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(h.HeartbeatInterval)
	defer heartbeat.Stop()

	var lastSent time.Time

	send := func(msg streamMessage) bool {
		payload, err := json.Marshal(msg)
		if err != nil {
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	emitState := func() bool {
		// a hung store read must not wedge the poll loop
		ctx, cancel := internal.WithTimeout(r.Context(), internal.DefaultTimeout)
		defer cancel()

		state, err := h.Service.GetState(ctx)
		if err != nil {
			return true
		}
		if !state.LastUpdated.After(lastSent) && !lastSent.IsZero() {
			return true
		}
		lastSent = state.LastUpdated
		return send(streamMessage{Type: "system-state-update", Data: state, Timestamp: time.Now()})
	}

	// initial snapshot before the first tick
	if !emitState() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-poll.C:
			if !emitState() {
				return
			}
		case <-heartbeat.C:
			if !send(streamMessage{Type: "heartbeat", Timestamp: time.Now()}) {
				return
			}
		}
	}
}
