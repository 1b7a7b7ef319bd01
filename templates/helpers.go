package templates

import (
	"fmt"
	"strings"

	"story_adventure/store"
	"story_adventure/story"
)

// StoryProgress places a stored story on its hidden arc without exposing the
// arc's content.
type StoryProgress struct {
	Phase    story.Phase
	Label    string
	Fraction float64
}

var phaseLabels = map[story.Phase]string{
	story.PhaseSetup:        "The journey begins",
	story.PhaseRisingAction: "Stakes are rising",
	story.PhaseComplication: "Things fall apart",
	story.PhaseClimax:       "The final stand",
	story.PhaseResolution:   "Ending in sight",
}

// ProgressOf reports where s sits on its arc. A story whose arc token does not
// parse is shown as just begun.
func ProgressOf(s store.Story) StoryProgress {
	arc, err := story.ParseArc(s.Arc)
	if err != nil {
		return StoryProgress{Phase: story.PhaseSetup, Label: phaseLabels[story.PhaseSetup]}
	}
	phase := story.SelectPhase(arc, len(s.Steps)).Phase
	return StoryProgress{
		Phase:    phase,
		Label:    phaseLabels[phase],
		Fraction: story.Progress(arc, len(s.Steps)),
	}
}

// GenreLine lists the recognized genres of a story in their canonical order.
func GenreLine(genres []string) string {
	return strings.Join(story.KnownGenres(genres), " · ")
}

// VignetteStyle closes the page edges in as the arc builds toward its climax
// and opens them again for the resolution.
func VignetteStyle(p StoryProgress) string {
	shade := 0.6 * p.Fraction
	if p.Phase == story.PhaseResolution {
		shade = 0.2
	}
	return fmt.Sprintf(`<style>#story-container { box-shadow: inset 0 0 %dpx rgba(0,0,0,%.2f); }</style>`,
		40+int(80*p.Fraction), shade)
}
