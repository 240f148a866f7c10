package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterBurnMetrics_Idempotent(t *testing.T) {
	RegisterBurnMetrics()
	RegisterBurnMetrics() // second call must not panic on duplicate registration
}

func TestObserveState(t *testing.T) {
	ObserveState(true, 3, 41)

	if v := testutil.ToFloat64(Enabled); v != 1 {
		t.Errorf("expected enabled=1, got %f", v)
	}
	if v := testutil.ToFloat64(SessionBurns); v != 3 {
		t.Errorf("expected session_burns=3, got %f", v)
	}
	if v := testutil.ToFloat64(AllTimeBurns); v != 41 {
		t.Errorf("expected all_time_burns=41, got %f", v)
	}

	ObserveState(false, 3, 41)
	if v := testutil.ToFloat64(Enabled); v != 0 {
		t.Errorf("expected enabled=0, got %f", v)
	}
}
