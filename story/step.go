package story

import (
	"errors"
	"fmt"
	"strings"
)

// OptionsPerStep is the number of branching choices every turn must offer.
const OptionsPerStep = 4

// Option is one branching choice offered to the reader.
type Option struct {
	StepButtonText        string `json:"stepButtonText"`
	StepButtonImagePrompt string `json:"stepButtonImagePrompt"`
}

// NarrationStyle carries the speaking instructions for the narration audio.
type NarrationStyle struct {
	Instructions string `json:"instructions"`
}

// StoryStep is one generated narrative beat.
type StoryStep struct {
	ThisFrameImagePrompt    string          `json:"thisFrameImagePrompt"`
	ThisFrameNarratorPrompt string          `json:"thisFrameNarratorPrompt"`
	NextOptions             []Option        `json:"nextOptions"`
	NarrationStyle          *NarrationStyle `json:"narrationStyle,omitempty"`
}

// Validate checks the structural invariants of a generated step.
func (s StoryStep) Validate() error {
	if strings.TrimSpace(s.ThisFrameNarratorPrompt) == "" {
		return errors.New("step has no narrator text")
	}
	if len(s.NextOptions) != OptionsPerStep {
		return fmt.Errorf("step has %d options, want %d", len(s.NextOptions), OptionsPerStep)
	}
	for i, o := range s.NextOptions {
		if strings.TrimSpace(o.StepButtonText) == "" {
			return fmt.Errorf("option %d has no text", i+1)
		}
	}
	return nil
}

// NarrationFor returns the speaking instructions for a phase's emotional tone.
func NarrationFor(p StoryPhase) *NarrationStyle {
	tone := strings.TrimSpace(p.EmotionalTone)
	if tone == "" {
		tone = "neutral"
	}
	return &NarrationStyle{Instructions: fmt.Sprintf("Speak in a %s tone that matches the current story phase.", tone)}
}

// ResponseData is the wire aggregate of one turn.
type ResponseData struct {
	ToReturnItems         StoryStep `json:"toReturnItems"`
	Base64Image           string    `json:"base64Image"`
	StyleGuidance         string    `json:"styleGuidance,omitempty"`
	StoryArc              string    `json:"storyArc,omitempty"`
	ToneAccordingToGenres string    `json:"toneAccordingToGenres,omitempty"`
	StoryID               string    `json:"storyId,omitempty"`
}
