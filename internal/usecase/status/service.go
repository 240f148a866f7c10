package status

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
)

// DefaultWarningTTL is how long a transient warning stays visible.
const DefaultWarningTTL = 5 * time.Second

// View is the rendered status indicator.
type View struct {
	Icon    string `json:"icon"`
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	// Highlight asks the renderer for the warning background (burning).
	Highlight bool   `json:"highlight"`
	Warning   string `json:"warning,omitempty"`
}

// Service renders engine state and holds the transient warning.
// It implements the engine's Warner and is registered as an observer.
type Service struct {
	mu           sync.Mutex
	state        domain.BurnState
	warning      string
	warningUntil time.Time
	ttl          time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// New creates a Service. ttl <= 0 selects DefaultWarningTTL.
func New(ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultWarningTTL
	}
	return &Service{ttl: ttl, now: time.Now, logger: logger}
}

// Update stores the latest engine snapshot.
func (s *Service) Update(state domain.BurnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Warn shows message until the TTL expires; a newer warning replaces it.
func (s *Service) Warn(message string) {
	s.mu.Lock()
	s.warning = "Token Burner: " + message
	s.warningUntil = s.now().Add(s.ttl)
	s.mu.Unlock()

	s.logger.Debug("Transient warning raised", zap.String("message", message), zap.Duration("ttl", s.ttl))
}

// View renders the current status.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := Render(s.state)
	if s.warning != "" && s.now().Before(s.warningUntil) {
		v.Warning = s.warning
	}
	return v
}

// Render turns a snapshot into a status indicator.
func Render(state domain.BurnState) View {
	v := View{Icon: "flame"}
	switch {
	case state.IsBurning:
		v.Text = "Burning..."
		v.Highlight = true
	case state.IsEnabled:
		v.Text = fmt.Sprintf("%d/%d", state.SessionCount, state.AllTimeCount)
	default:
		v.Text = "Off"
	}
	v.Tooltip = fmt.Sprintf("AI Token Burner\nSession: %d | All-time: %d\nInterval: %dm\nModel: %s",
		state.SessionCount, state.AllTimeCount, state.IntervalMinutes, state.ModelLabel())
	return v
}
