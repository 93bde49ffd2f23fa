package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gatherly/gatherly-api/internal/notifier"
)

type StreamHandler struct {
	hub *notifier.Hub
}

func NewStreamHandler(hub *notifier.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream handles GET /updates. It pushes every committed change to the
// client as a server-sent event until the client disconnects. A client
// that stops reading has changes dropped rather than slowing anyone
// else down.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	changes := make(chan notifier.Change, 64)
	token := h.hub.Subscribe(func(c notifier.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	defer h.hub.Unsubscribe(token)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case c := <-changes:
			data, err := json.Marshal(c)
			if err != nil {
				log.Printf("stream: marshal change: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Kind, data)
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
