package breathing

import (
	"time"

	"github.com/faycal55/respira/internal/domain"
)

// Animation is the normalised breathing-circle value for one phase. It has no
// effect on the session itself.
type Animation struct {
	From     float64
	To       float64
	Duration time.Duration
}

// AnimationTarget grows the circle from 0 to 1 during inhale phases and shrinks
// it from 1 to 0 otherwise, over the phase length.
func AnimationTarget(p domain.BreathingPhase) Animation {
	a := Animation{From: 1, To: 0, Duration: time.Duration(p.Duration) * time.Second}
	if p.IsInhale() {
		a.From, a.To = 0, 1
	}
	return a
}

// At interpolates linearly, clamped to the animation bounds.
func (a Animation) At(elapsed time.Duration) float64 {
	if a.Duration <= 0 || elapsed >= a.Duration {
		return a.To
	}
	if elapsed <= 0 {
		return a.From
	}
	frac := float64(elapsed) / float64(a.Duration)
	return a.From + (a.To-a.From)*frac
}

// Current returns the animation value for s.
func Current(s State) float64 {
	p, ok := s.Phase()
	if !ok || s.Status == StatusIdle {
		return 0
	}
	elapsed := time.Duration(p.Duration-s.PhaseRemaining) * time.Second
	return AnimationTarget(p).At(elapsed)
}
