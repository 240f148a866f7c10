package journal

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLog_AppendsTimestampedLines(t *testing.T) {
	j := New(10, zap.NewNop())
	j.now = fixedClock(time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC))

	j.Log("Burn mode enabled")
	j.Log("Burn mode disabled")

	lines := j.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "[2026-10-19T08:30:00.000Z] Burn mode enabled" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "Burn mode disabled") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestLog_DropsOldestWhenFull(t *testing.T) {
	j := New(3, zap.NewNop())

	for _, m := range []string{"a", "b", "c", "d", "e"} {
		j.Log(m)
	}

	entries := j.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	got := []string{entries[0].Message, entries[1].Message, entries[2].Message}
	want := []string{"c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	j := New(5, zap.NewNop())
	j.Log("first")

	entries := j.Entries()
	entries[0].Message = "mutated"

	if j.Entries()[0].Message != "first" {
		t.Error("Entries must not expose internal storage")
	}
}

func TestNew_DefaultSize(t *testing.T) {
	j := New(0, zap.NewNop())
	if j.size != DefaultSize {
		t.Errorf("expected default size %d, got %d", DefaultSize, j.size)
	}
}
