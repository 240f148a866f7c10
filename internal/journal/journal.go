// Package journal keeps the human-readable diagnostic log of the burner:
// timestamped free-text lines, append-only, newest last.
package journal

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSize is the number of lines retained when no size is configured.
const DefaultSize = 500

// Entry is a single journal line.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// String renders the entry as "[<ISO-8601 UTC>] message".
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.UTC().Format("2006-01-02T15:04:05.000Z"), e.Message)
}

// Journal is a bounded in-memory journal mirrored into zap.
// Once full, the oldest lines are dropped.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a journal retaining at most size lines.
func New(size int, logger *zap.Logger) *Journal {
	if size <= 0 {
		size = DefaultSize
	}
	return &Journal{
		entries: make([]Entry, 0, size),
		size:    size,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "journal")),
	}
}

// Log appends a timestamped line.
func (j *Journal) Log(message string) {
	e := Entry{Time: j.now(), Message: message}

	j.mu.Lock()
	if len(j.entries) == j.size {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:j.size-1]
	}
	j.entries = append(j.entries, e)
	j.mu.Unlock()

	j.logger.Info(message)
}

// Entries returns a copy of the retained lines, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Lines returns the retained lines rendered as text.
func (j *Journal) Lines() []string {
	entries := j.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}
