package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/couchcryptid/safespot-sync/internal/domain"
)

// streamEvent is one server-sent snapshot frame.
type streamEvent struct {
	Reports  []domain.Report `json:"reports"`
	Stats    domain.Stats    `json:"stats"`
	Degraded bool            `json:"degraded"`
}

// handleStream serves the live snapshot feed as server-sent events. The
// current snapshot goes out immediately on connect, then one frame per
// list replacement. A slow consumer only ever skips intermediate frames;
// it never blocks the event path and always ends up on the latest one.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.metrics.StreamClients.Inc()
	defer s.metrics.StreamClients.Dec()

	updates := make(chan []domain.Report, 1)
	remove := s.sync.AddListener(func(reports []domain.Report) {
		// Keep only the newest pending frame.
		select {
		case updates <- reports:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- reports:
			default:
			}
		}
	})
	defer remove()

	if err := s.writeFrame(w, flusher, s.sync.Reports()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case reports := <-updates:
			if err := s.writeFrame(w, flusher, reports); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeFrame(w http.ResponseWriter, flusher http.Flusher, reports []domain.Report) error {
	ev := streamEvent{
		Reports:  reports,
		Stats:    domain.ComputeStats(reports),
		Degraded: s.sync.Degraded(),
	}
	if ev.Reports == nil {
		ev.Reports = []domain.Report{}
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
