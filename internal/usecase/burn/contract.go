package burn

import (
	"context"
	"time"

	"github.com/kailas-cloud/burner/internal/domain"
)

// ModelProvider lists chat models and sends prompts to them.
type ModelProvider interface {
	// ListModels returns available models in provider order; a non-empty filter
	// restricts the result to that model id.
	ListModels(ctx context.Context, filter string) ([]domain.Model, error)
	Send(ctx context.Context, modelID, prompt string) (domain.ChatStream, error)
}

// CounterStore persists named integer counters. Get returns 0 for absent keys.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, val int64) error
}

// IntervalSource yields the configured burn interval, read on every use.
type IntervalSource interface {
	IntervalMinutes() int
}

// Journal records human-readable diagnostic lines.
type Journal interface {
	Log(message string)
}

// Warner shows a transient, auto-dismissing warning to the user.
type Warner interface {
	Warn(message string)
}

// Ticker is a cancellable repeating trigger.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

// NewTimeTicker is the production TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
