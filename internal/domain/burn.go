package domain

// BurnState is a point-in-time snapshot of the burn engine.
// Values are copied out of the engine; mutating a BurnState has no effect on it.
type BurnState struct {
	IsEnabled       bool   `json:"is_enabled"`
	IsBurning       bool   `json:"is_burning"`
	SessionCount    int64  `json:"session_count"`
	AllTimeCount    int64  `json:"all_time_count"`
	IntervalMinutes int    `json:"interval_minutes"`
	SelectedModel   string `json:"selected_model,omitempty"` // "" = any available model
}

// Phase names the engine state machine node the snapshot belongs to.
func (s BurnState) Phase() Phase {
	switch {
	case !s.IsEnabled:
		return PhaseDisabled
	case s.IsBurning:
		return PhaseBurning
	default:
		return PhaseIdle
	}
}

// ModelLabel returns the selected model or "auto" when none is set.
func (s BurnState) ModelLabel() string {
	if s.SelectedModel == "" {
		return AutoModel
	}
	return s.SelectedModel
}

// Phase is a node of the enable/burn state machine.
type Phase string

const (
	// PhaseDisabled means no timer is scheduled.
	PhaseDisabled Phase = "disabled"
	// PhaseIdle means the timer is running and no burn is in flight.
	PhaseIdle Phase = "enabled_idle"
	// PhaseBurning means the timer is running and a burn is in flight.
	PhaseBurning Phase = "enabled_burning"
)

// Trigger identifies what started a burn attempt.
type Trigger string

const (
	// TriggerTimer is a burn started by the recurring ticker.
	TriggerTimer Trigger = "timer"
	// TriggerManual is a burn started by an explicit "burn now".
	TriggerManual Trigger = "manual"
)

// Outcome is the result class of a single burn attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeNoModel Outcome = "no_model"
	OutcomeSkipped Outcome = "skipped" // another burn was in flight
)

// Prompts is the fixed set of throwaway prompts a burn picks from.
var Prompts = []string{"Ping.", "Hello.", "Hi there.", "Test.", "Check."}

// MaxIntervalMinutes caps the burn interval at one year so the timer period
// always fits in a time.Duration.
const MaxIntervalMinutes = 365 * 24 * 60
