package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
)

// DefaultIntervalMinutes is used when no interval is configured.
const DefaultIntervalMinutes = 5

// Defaults are the file-configured values, overridden by persisted ones.
type Defaults struct {
	IntervalMinutes int
	AutoStart       bool
}

// Service owns the runtime burner settings.
type Service struct {
	mu        sync.RWMutex
	interval  int
	autoStart bool
	listeners []func()
	store     Store
	logger    *zap.Logger
}

// New creates a Service. store can be nil (settings live in memory only).
func New(defaults Defaults, store Store, logger *zap.Logger) *Service {
	interval := defaults.IntervalMinutes
	if !inRange(int64(interval)) {
		interval = DefaultIntervalMinutes
	}
	return &Service{
		interval:  interval,
		autoStart: defaults.AutoStart,
		store:     store,
		logger:    logger,
	}
}

// Load applies a previously persisted interval, if any.
func (s *Service) Load(ctx context.Context) {
	if s.store == nil {
		return
	}

	val, err := s.store.Get(ctx, domain.IntervalSettingKey)
	if err != nil {
		s.logger.Warn("Failed to load persisted interval, keeping configured value", zap.Error(err))
		return
	}
	if val == 0 {
		return
	}
	if !inRange(val) {
		s.logger.Warn("Ignoring out-of-range persisted interval", zap.Int64("interval_minutes", val))
		return
	}

	s.mu.Lock()
	s.interval = int(val)
	s.mu.Unlock()

	s.logger.Info("Interval loaded from store", zap.Int64("interval_minutes", val))
}

// IntervalMinutes returns the current burn interval.
func (s *Service) IntervalMinutes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// AutoStart reports whether the engine should be enabled on process start.
func (s *Service) AutoStart() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoStart
}

// OnIntervalChange registers fn to run after every successful SetInterval.
func (s *Service) OnIntervalChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// ParseInterval validates raw user input: it must be an integer between 1
// and domain.MaxIntervalMinutes.
func ParseInterval(raw string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || !inRange(n) {
		return 0, fmt.Errorf("interval %q: %w", raw, domain.ErrInvalidInterval)
	}
	return int(n), nil
}

func inRange(minutes int64) bool {
	return minutes >= 1 && minutes <= domain.MaxIntervalMinutes
}

// SetInterval validates, persists and applies a new interval, then notifies listeners.
// Invalid input never changes the setting.
func (s *Service) SetInterval(ctx context.Context, raw string) (int, error) {
	n, err := ParseInterval(raw)
	if err != nil {
		return 0, err
	}

	if s.store != nil {
		if err := s.store.Set(ctx, domain.IntervalSettingKey, int64(n)); err != nil {
			return 0, fmt.Errorf("persist interval: %w", err)
		}
	}

	s.mu.Lock()
	s.interval = n
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Info("Interval updated", zap.Int("interval_minutes", n))

	for _, fn := range listeners {
		fn()
	}
	return n, nil
}
