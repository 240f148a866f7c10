package burn

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/burner/internal/domain"
)

// --- Provider ---

type mockProvider struct {
	mu        sync.Mutex
	models    []domain.Model
	listErr   error
	sendErr   error
	chunks    []string
	recvErr   error
	release   chan struct{} // when set, Send blocks until closed
	panicMsg  string
	listCalls int
	sendCalls int
	filters   []string
	sentTo    []string
	prompts   []string
}

func (m *mockProvider) ListModels(_ context.Context, filter string) ([]domain.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	m.filters = append(m.filters, filter)
	if m.listErr != nil {
		return nil, m.listErr
	}
	if filter == "" {
		return m.models, nil
	}
	var out []domain.Model
	for _, md := range m.models {
		if md.ID == filter {
			out = append(out, md)
		}
	}
	return out, nil
}

func (m *mockProvider) Send(_ context.Context, modelID, prompt string) (domain.ChatStream, error) {
	m.mu.Lock()
	m.sendCalls++
	m.sentTo = append(m.sentTo, modelID)
	m.prompts = append(m.prompts, prompt)
	release := m.release
	sendErr := m.sendErr
	panicMsg := m.panicMsg
	chunks := append([]string(nil), m.chunks...)
	recvErr := m.recvErr
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if release != nil {
		<-release
	}
	if sendErr != nil {
		return nil, sendErr
	}
	return &mockStream{chunks: chunks, err: recvErr}, nil
}

func (m *mockProvider) counts() (list, send int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.sendCalls
}

type mockStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *mockStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

// --- Counters ---

type mockCounters struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockCounters(allTime int64) *mockCounters {
	return &mockCounters{data: map[string]int64{domain.AllTimeCounterKey: allTime}}
}

func (m *mockCounters) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func (m *mockCounters) Set(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = val
	return nil
}

func (m *mockCounters) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Settings ---

type mockSettings struct {
	interval atomic.Int64
}

func newMockSettings(minutes int) *mockSettings {
	s := &mockSettings{}
	s.interval.Store(int64(minutes))
	return s
}

func (s *mockSettings) IntervalMinutes() int { return int(s.interval.Load()) }

// --- Journal / Warner ---

type mockJournal struct {
	mu    sync.Mutex
	lines []string
}

func (j *mockJournal) Log(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lines = append(j.lines, message)
}

func (j *mockJournal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.lines...)
}

type mockWarner struct {
	mu       sync.Mutex
	messages []string
}

func (w *mockWarner) Warn(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, message)
}

func (w *mockWarner) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.messages...)
}

// --- Ticker ---

type fakeTicker struct {
	d       time.Duration
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// fire delivers one tick; the channel holds one pending tick like time.Ticker.
func (t *fakeTicker) fire() {
	select {
	case t.ch <- time.Now():
	default:
	}
}

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{d: d, ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) all() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeTicker(nil), f.tickers...)
}
