// Package breathing runs guided breathing sessions. The transitions are pure
// functions over State; Machine drives them from a one-second ticker.
package breathing

import (
	"github.com/faycal55/respira/internal/domain"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// State is the runtime state of one session. It is never persisted.
type State struct {
	Technique        *domain.BreathingTechnique `json:"-"`
	Status           Status                     `json:"status"`
	PhaseIndex       int                        `json:"phase_index"`
	PhaseRemaining   int                        `json:"phase_remaining"`
	SessionRemaining int                        `json:"session_remaining"`
	Cycles           int                        `json:"cycles"`
}

// Idle is the zero session.
func Idle() State { return State{Status: StatusIdle} }

// Phase returns the current phase, or false when no technique is selected.
func (s State) Phase() (domain.BreathingPhase, bool) {
	if s.Technique == nil || s.PhaseIndex < 0 || s.PhaseIndex >= len(s.Technique.Phases) {
		return domain.BreathingPhase{}, false
	}
	return s.Technique.Phases[s.PhaseIndex], true
}

// Elapsed is the number of session seconds already consumed.
func (s State) Elapsed() int {
	if s.Technique == nil {
		return 0
	}
	return s.Technique.TotalDuration - s.SessionRemaining
}

type EventKind string

const (
	EventStarted      EventKind = "started"
	EventPhaseChanged EventKind = "phase_changed"
	EventPaused       EventKind = "paused"
	EventResumed      EventKind = "resumed"
	EventStopped      EventKind = "stopped"
	EventCompleted    EventKind = "completed"
	EventTick         EventKind = "tick"
)

// Event describes one transition. For PhaseChanged, Phase is the phase just
// entered and CycleCompleted is set when the index wrapped to zero. Stopped and
// Completed carry the state as it was right before the reset in Final.
type Event struct {
	Kind           EventKind
	Phase          domain.BreathingPhase
	PhaseIndex     int
	CycleCompleted bool
	Final          State
}

// Start begins a session on t from a clean slate. An invalid technique yields
// an idle state and the validation error.
func Start(t *domain.BreathingTechnique) (State, error) {
	if t == nil {
		return Idle(), errNoTechnique
	}
	if err := t.Validate(); err != nil {
		return Idle(), err
	}
	return State{
		Technique:        t,
		Status:           StatusRunning,
		PhaseIndex:       0,
		PhaseRemaining:   t.Phases[0].Duration,
		SessionRemaining: t.TotalDuration,
		Cycles:           0,
	}, nil
}

// Advance applies elapsed one-second ticks. It is a no-op unless the session
// is running, and stops early once the session completes.
func Advance(s State, elapsed int) (State, []Event) {
	var events []Event
	for i := 0; i < elapsed && s.Status == StatusRunning; i++ {
		var ev []Event
		s, ev = tick(s)
		events = append(events, ev...)
	}
	return s, events
}

func tick(s State) (State, []Event) {
	var events []Event
	if s.PhaseRemaining > 0 {
		s.PhaseRemaining--
		s.SessionRemaining--
	}

	if s.PhaseRemaining == 0 {
		n := len(s.Technique.Phases)
		s.PhaseIndex = (s.PhaseIndex + 1) % n
		s.PhaseRemaining = s.Technique.Phases[s.PhaseIndex].Duration
		wrapped := s.PhaseIndex == 0
		if wrapped {
			s.Cycles++
		}
		events = append(events, Event{
			Kind:           EventPhaseChanged,
			Phase:          s.Technique.Phases[s.PhaseIndex],
			PhaseIndex:     s.PhaseIndex,
			CycleCompleted: wrapped,
		})
	}

	// The session length is a hard cutoff and may truncate the current phase.
	if s.SessionRemaining <= 0 {
		final := s
		final.SessionRemaining = 0
		events = append(events, Event{Kind: EventCompleted, PhaseIndex: final.PhaseIndex, Final: final})
		return Idle(), events
	}
	return s, events
}

// Pause freezes a running session. Any other state is returned unchanged.
func Pause(s State) State {
	if s.Status != StatusRunning {
		return s
	}
	s.Status = StatusPaused
	return s
}

// Resume continues a paused session from where it stopped.
func Resume(s State) State {
	if s.Status != StatusPaused {
		return s
	}
	s.Status = StatusRunning
	return s
}

// Stop resets every counter and returns to idle, from any state.
func Stop(State) State {
	return Idle()
}
