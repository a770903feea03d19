package domain

import (
	"fmt"
	"strings"
	"time"
)

// BreathingPhase is one segment of a breathing cycle. Duration is in whole seconds.
type BreathingPhase struct {
	Name        string `json:"name" yaml:"name"`
	Duration    int    `json:"duration" yaml:"duration"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Color       string `json:"color" yaml:"color"`
}

// IsInhale reports whether the phase fills the lungs. The catalog is written in
// French, so both labels are recognised.
func (p BreathingPhase) IsInhale() bool {
	switch strings.ToLower(strings.TrimSpace(p.Name)) {
	case "inhale", "inspiration":
		return true
	}
	return false
}

// BreathingTechnique is a cyclic list of phases plus an overall session length.
// TotalDuration is declared independently of the phases and is not derived from them.
type BreathingTechnique struct {
	ID            string           `json:"id" yaml:"id"`
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description" yaml:"description"`
	Emoji         string           `json:"emoji" yaml:"emoji"`
	TotalDuration int              `json:"total_duration" yaml:"total_duration"`
	Phases        []BreathingPhase `json:"phases" yaml:"phases"`
}

// CycleLength is the sum of the phase durations.
func (t *BreathingTechnique) CycleLength() int {
	total := 0
	for _, p := range t.Phases {
		total += p.Duration
	}
	return total
}

// Validate rejects techniques the session timer cannot run.
func (t *BreathingTechnique) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("technique id is required")
	}
	if len(t.Phases) == 0 {
		return fmt.Errorf("technique %s has no phases", t.ID)
	}
	if t.TotalDuration <= 0 {
		return fmt.Errorf("technique %s: total duration must be positive", t.ID)
	}
	for i, p := range t.Phases {
		if p.Duration <= 0 {
			return fmt.Errorf("technique %s: phase %d (%s) must last at least one second", t.ID, i, p.Name)
		}
	}
	return nil
}

// BreathingSession is a finished or interrupted session recorded on the server.
type BreathingSession struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TechniqueID    string    `json:"technique_id"`
	Cycles         int       `json:"cycles"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
}
