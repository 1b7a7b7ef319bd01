package story

import (
	"encoding/json"
	"fmt"
)

// Phase is one of the five fixed stages of a story arc.
type Phase string

const (
	PhaseSetup        Phase = "setup"
	PhaseRisingAction Phase = "risingAction"
	PhaseComplication Phase = "complication"
	PhaseClimax       Phase = "climax"
	PhaseResolution   Phase = "resolution"
)

// Phases lists the arc phases in narrative order.
var Phases = []Phase{PhaseSetup, PhaseRisingAction, PhaseComplication, PhaseClimax, PhaseResolution}

const (
	MinEstimatedSteps = 8
	MaxEstimatedSteps = 12
)

// StoryPhase is a single plot point of the hidden arc.
type StoryPhase struct {
	Phase         Phase  `json:"phase"`
	Description   string `json:"description"`
	EmotionalTone string `json:"emotionalTone"`
}

// StoryArc is the hidden outline planned once per story. The client echoes it
// back as an opaque string on every continuation.
type StoryArc struct {
	PlotPoints     []StoryPhase `json:"plotPoints"`
	EstimatedSteps int          `json:"estimatedSteps"`
}

func phaseIndex(p Phase) int {
	for i, known := range Phases {
		if known == p {
			return i
		}
	}
	return -1
}

// Normalize orders the plot points by phase and clamps EstimatedSteps into
// [MinEstimatedSteps, MaxEstimatedSteps]. It fails when a phase is unknown,
// missing or repeated.
func (a StoryArc) Normalize() (StoryArc, error) {
	if len(a.PlotPoints) != len(Phases) {
		return StoryArc{}, fmt.Errorf("arc has %d plot points, want %d", len(a.PlotPoints), len(Phases))
	}

	ordered := make([]StoryPhase, len(Phases))
	seen := make([]bool, len(Phases))
	for _, p := range a.PlotPoints {
		i := phaseIndex(p.Phase)
		if i < 0 {
			return StoryArc{}, fmt.Errorf("unknown phase %q", p.Phase)
		}
		if seen[i] {
			return StoryArc{}, fmt.Errorf("phase %q appears twice", p.Phase)
		}
		seen[i] = true
		ordered[i] = p
	}

	steps := a.EstimatedSteps
	if steps < MinEstimatedSteps {
		steps = MinEstimatedSteps
	}
	if steps > MaxEstimatedSteps {
		steps = MaxEstimatedSteps
	}
	return StoryArc{PlotPoints: ordered, EstimatedSteps: steps}, nil
}

// Encode serializes the arc into the token handed to the client.
func (a StoryArc) Encode() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseArc decodes and normalizes a client-supplied arc token.
func ParseArc(token string) (StoryArc, error) {
	var a StoryArc
	if err := json.Unmarshal([]byte(token), &a); err != nil {
		return StoryArc{}, fmt.Errorf("decode arc: %w", err)
	}
	return a.Normalize()
}
