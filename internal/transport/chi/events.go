package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/logger"
)

const (
	defaultKeepAlive = 15 * time.Second
	eventBuffer      = 8
)

// StreamEvents handles GET /events: a server-sent event stream with one
// "state" event per engine broadcast, starting with the current state.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.logger)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "streaming unsupported")
		return
	}
	// The stream outlives the server write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debug("clear write deadline", zap.Error(err))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	updates := make(chan domain.BurnState, eventBuffer)
	unsubscribe := s.engine.Subscribe(latestOnly(updates))
	defer unsubscribe()

	if err := writeStateEvent(w, s.engine.State()); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.shutdown:
			return
		case state := <-updates:
			if err := writeStateEvent(w, state); err != nil {
				log.Debug("event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// latestOnly returns an observer that never blocks the broadcaster:
// when ch is full the oldest pending state is evicted.
func latestOnly(ch chan domain.BurnState) func(domain.BurnState) {
	return func(state domain.BurnState) {
		for {
			select {
			case ch <- state:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Shutdown ends every open event and WebSocket stream. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func writeStateEvent(w http.ResponseWriter, state domain.BurnState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
