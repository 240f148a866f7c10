package burn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/metrics"
)

// previewLimit caps the response prefix written to the journal.
const previewLimit = 100

// Observer receives a state snapshot after every state change.
// Observers run synchronously on the mutating goroutine and must not call
// Engine mutators (Enable, Disable, UpdateInterval, SetModel, BurnNow).
type Observer func(domain.BurnState)

type observer struct {
	id uint64
	fn Observer
}

// timer is one installed ticker. Replacing e.timer retires the old one:
// its ticks are discarded even if already received.
type timer struct {
	ticker Ticker
	stop   chan struct{}
}

// Engine periodically burns tokens by sending throwaway prompts to a chat model.
// At most one burn is in flight at any time; extra triggers are dropped.
type Engine struct {
	provider ModelProvider
	counters CounterStore
	settings IntervalSource
	journal  Journal
	warner   Warner
	logger   *zap.Logger

	newTicker TickerFunc
	unit      time.Duration
	pick      func(n int) int

	// emitMu serializes "mutate + broadcast" so observers see changes in order.
	emitMu sync.Mutex

	mu        sync.Mutex
	enabled   bool
	burning   bool
	session   int64
	allTime   int64
	model     string
	timer     *timer
	observers []observer
	nextObsID uint64
	closed    bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a disabled engine. Call Load to read the persisted all-time counter.
func New(
	provider ModelProvider, counters CounterStore, settings IntervalSource,
	journal Journal, warner Warner, logger *zap.Logger,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		provider:  provider,
		counters:  counters,
		settings:  settings,
		journal:   journal,
		warner:    warner,
		logger:    logger,
		newTicker: NewTimeTicker,
		unit:      time.Minute,
		pick:      rand.IntN,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Load reads the persisted all-time counter. A failure is logged and the
// counter starts from 0 in memory.
func (e *Engine) Load(ctx context.Context) *Engine {
	val, err := e.counters.Get(ctx, domain.AllTimeCounterKey)
	if err != nil {
		e.logger.Warn("Failed to load all-time counter from store", zap.Error(err))
		return e
	}

	e.mu.Lock()
	e.allTime = val
	e.mu.Unlock()

	metrics.ObserveState(false, 0, val)
	e.logger.Info("All-time counter loaded", zap.Int64("all_time_count", val))
	return e
}

// State returns a snapshot of the engine.
func (e *Engine) State() domain.BurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn for state-change notifications, delivered in
// registration order. The returned func unregisters it.
func (e *Engine) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	e.nextObsID++
	id := e.nextObsID
	e.observers = append(e.observers, observer{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, o := range e.observers {
				if o.id == id {
					e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Enable starts the recurring timer. No-op if already enabled.
func (e *Engine) Enable() {
	changed := e.mutate(func() bool {
		if e.enabled || e.closed {
			return false
		}
		e.enabled = true
		e.startTimerLocked()
		return true
	})
	if changed {
		e.journal.Log("Burn mode enabled")
	}
}

// Disable cancels the recurring timer. An in-flight burn runs to completion.
// No-op if already disabled.
func (e *Engine) Disable() {
	changed := e.mutate(func() bool {
		if !e.enabled {
			return false
		}
		e.enabled = false
		e.stopTimerLocked()
		return true
	})
	if changed {
		e.journal.Log("Burn mode disabled")
	}
}

// UpdateInterval restarts the timer with the currently configured interval
// when enabled. It always notifies observers so they can re-read settings.
func (e *Engine) UpdateInterval() {
	e.mutate(func() bool {
		if e.enabled && !e.closed {
			e.stopTimerLocked()
			e.startTimerLocked()
		}
		return true
	})
}

// SetModel constrains burns to the given model id; "" means any model.
func (e *Engine) SetModel(modelID string) {
	var label string
	e.mutate(func() bool {
		e.model = modelID
		label = e.snapshotLocked().ModelLabel()
		return true
	})
	e.journal.Log("Model set to: " + label)
}

// BurnNow runs a burn immediately. It is ignored if a burn is already in flight.
func (e *Engine) BurnNow(ctx context.Context) domain.Outcome {
	return e.performBurn(ctx, domain.TriggerManual)
}

// Trigger starts a manual burn in the background on the engine's lifecycle
// context, so it outlives the caller's request. Returns false once closed.
func (e *Engine) Trigger() bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		e.performBurn(e.ctx, domain.TriggerManual)
	}()
	return true
}

// AvailableModels lists every model the provider offers.
// Errors are swallowed: discovery failure reads as "no models".
func (e *Engine) AvailableModels(ctx context.Context) []domain.Model {
	models, err := e.provider.ListModels(ctx, "")
	if err != nil {
		e.logger.Debug("Model discovery failed", zap.Error(err))
		return []domain.Model{}
	}
	return models
}

// Close stops the timer, drops observers, cancels timer-triggered burns and
// waits for them to return. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.enabled = false
		e.stopTimerLocked()
		e.observers = nil
		e.mu.Unlock()

		e.cancel()
		e.wg.Wait()
	})
}

// mutate applies fn under the state lock and, if fn reports a change,
// broadcasts the resulting snapshot. Returns whether a change happened.
func (e *Engine) mutate(fn func() bool) bool {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	changed, state, observers := e.applyLocked(fn)
	if !changed {
		return false
	}

	metrics.ObserveState(state.IsEnabled, state.SessionCount, state.AllTimeCount)
	for _, o := range observers {
		o.fn(state)
	}
	return true
}

// applyLocked runs fn under e.mu and releases the lock even if fn panics.
func (e *Engine) applyLocked(fn func() bool) (bool, domain.BurnState, []observer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := fn()
	observers := make([]observer, len(e.observers))
	copy(observers, e.observers)
	return changed, e.snapshotLocked(), observers
}

func (e *Engine) snapshotLocked() domain.BurnState {
	return domain.BurnState{
		IsEnabled:       e.enabled,
		IsBurning:       e.burning,
		SessionCount:    e.session,
		AllTimeCount:    e.allTime,
		IntervalMinutes: e.settings.IntervalMinutes(),
		SelectedModel:   e.model,
	}
}

func (e *Engine) startTimerLocked() {
	interval := min(max(e.settings.IntervalMinutes(), 1), domain.MaxIntervalMinutes)

	t := &timer{
		ticker: e.newTicker(time.Duration(interval) * e.unit),
		stop:   make(chan struct{}),
	}
	e.timer = t

	e.wg.Add(1)
	go e.runTimer(t)

	e.logger.Debug("Burn timer started", zap.Int("interval_minutes", interval))
}

func (e *Engine) stopTimerLocked() {
	if e.timer == nil {
		return
	}
	close(e.timer.stop)
	e.timer = nil
}

func (e *Engine) runTimer(t *timer) {
	defer e.wg.Done()
	defer t.ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C():
			if !e.acquireTick(t) {
				return
			}
			go func() {
				defer e.wg.Done()
				e.performBurn(e.ctx, domain.TriggerTimer)
			}()
		}
	}
}

// acquireTick reports whether t is still the installed timer and, if so,
// accounts for the burn goroutine about to start.
func (e *Engine) acquireTick(t *timer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.timer != t {
		return false
	}
	e.wg.Add(1)
	return true
}

// performBurn is the only path that changes the counters. It never panics
// and never returns an error: failures are journaled and surfaced as warnings.
func (e *Engine) performBurn(ctx context.Context, trigger domain.Trigger) domain.Outcome {
	started := e.mutate(func() bool {
		if e.burning || e.closed {
			return false
		}
		e.burning = true
		return true
	})
	if !started {
		metrics.BurnsTotal.WithLabelValues(string(trigger), string(domain.OutcomeSkipped)).Inc()
		return domain.OutcomeSkipped
	}

	burnID := uuid.NewString()
	e.logger.Debug("Burn started", zap.String("burn_id", burnID), zap.String("trigger", string(trigger)))

	start := time.Now()
	outcome := e.burn(ctx)

	e.mutate(func() bool {
		e.burning = false
		return true
	})

	metrics.BurnsTotal.WithLabelValues(string(trigger), string(outcome)).Inc()
	metrics.BurnDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
	e.logger.Debug("Burn finished",
		zap.String("burn_id", burnID),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", time.Since(start)),
	)
	return outcome
}

func (e *Engine) burn(ctx context.Context) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Burn panicked", zap.Any("panic", r), zap.Stack("stacktrace"))
			outcome = e.fail(fmt.Errorf("unexpected panic: %v", r))
		}
	}()

	prompt := domain.Prompts[e.pick(len(domain.Prompts))]

	e.mu.Lock()
	filter := e.model
	e.mu.Unlock()

	models, err := e.provider.ListModels(ctx, filter)
	if err != nil {
		return e.fail(err)
	}
	if len(models) == 0 {
		e.journal.Log("No models available")
		e.logger.Info("Burn skipped", zap.Error(domain.ErrNoModelAvailable), zap.String("model", filter))
		return domain.OutcomeNoModel
	}

	model := models[0]
	response, err := e.send(ctx, model.ID, prompt)
	if err != nil {
		return e.fail(err)
	}

	if err := e.recordSuccess(ctx); err != nil {
		return e.fail(err)
	}

	e.journal.Log(fmt.Sprintf(`Burn complete - Model: %s, Prompt: "%s", Response: "%s"`,
		model.DisplayName, prompt, preview(response)))
	return domain.OutcomeSuccess
}

// send drains the whole stream so the provider counts the request as complete.
func (e *Engine) send(ctx context.Context, modelID, prompt string) (string, error) {
	stream, err := e.provider.Send(ctx, modelID, prompt)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			e.logger.Debug("Failed to close chat stream", zap.Error(cerr))
		}
	}()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("stream: %w", err)
		}
		b.WriteString(chunk)
	}
}

// recordSuccess bumps the persisted all-time counter (read-increment-write),
// then the in-memory counters together.
func (e *Engine) recordSuccess(ctx context.Context) error {
	current, err := e.counters.Get(ctx, domain.AllTimeCounterKey)
	if err != nil {
		return fmt.Errorf("read all-time counter: %w", err)
	}
	if err := e.counters.Set(ctx, domain.AllTimeCounterKey, current+1); err != nil {
		return fmt.Errorf("write all-time counter: %w", err)
	}

	e.mu.Lock()
	e.session++
	e.allTime = current + 1
	e.mu.Unlock()
	return nil
}

func (e *Engine) fail(err error) domain.Outcome {
	msg := err.Error()
	e.journal.Log("Burn failed: " + msg)
	e.logger.Warn("Burn failed", zap.Error(err))
	e.warner.Warn(msg)
	return domain.OutcomeFailed
}

// preview returns at most previewLimit runes of s with newlines as spaces,
// followed by "..." when s was longer.
func preview(s string) string {
	r := []rune(s)
	suffix := ""
	if len(r) > previewLimit {
		r = r[:previewLimit]
		suffix = "..."
	}
	return strings.ReplaceAll(string(r), "\n", " ") + suffix
}
