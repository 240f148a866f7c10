package chi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/logger"
)

// WebSocket timing and message limits.
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMsgSize = 1 << 12
)

// wsEnvelope is the frame written to WebSocket clients.
type wsEnvelope struct {
	Type string           `json:"type"`
	Data domain.BurnState `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamWebSocket handles GET /ws: the same state stream as /events, one
// {"type":"state"} frame per engine broadcast, starting with the current state.
func (s *Server) StreamWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.logger)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(wsMaxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Drain control frames and detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates := make(chan domain.BurnState, eventBuffer)
	unsubscribe := s.engine.Subscribe(latestOnly(updates))
	defer unsubscribe()

	if err := writeWSState(conn, s.engine.State()); err != nil {
		log.Debug("ws initial write failed", zap.Error(err))
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.shutdown:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(wsWriteWait))
			return
		case state := <-updates:
			if err := writeWSState(conn, state); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeWSState(conn *websocket.Conn, state domain.BurnState) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(wsEnvelope{Type: "state", Data: state}) //nolint:wrapcheck // caller logs
}
