// Package store keeps server-owned story records so a continuation can be
// driven by a story id instead of the client echoing the arc and history.
package store

import (
	"time"

	"story_adventure/story"
)

// Story is a persisted adventure. Arc is the opaque arc token and is never
// exposed through the read endpoints.
type Story struct {
	ID        string    `json:"id"`
	Genres    []string  `json:"genres"`
	Prompt    string    `json:"prompt,omitempty"`
	Arc       string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	Steps     []Step    `json:"steps"`
}

// Step is one generated scene and, once the reader picked one, the chosen option.
type Step struct {
	Index          int            `json:"index"`
	NarratorPrompt string         `json:"narratorPrompt"`
	ImagePrompt    string         `json:"imagePrompt"`
	Options        []story.Option `json:"options"`
	Choice         string         `json:"choice,omitempty"`
}

// History converts the recorded steps into prompt history entries.
func (s Story) History() []story.HistoryEntry {
	out := make([]story.HistoryEntry, 0, len(s.Steps))
	for _, st := range s.Steps {
		out = append(out, story.HistoryEntry{NarratorPrompt: st.NarratorPrompt, SelectedButtonText: st.Choice})
	}
	return out
}

// ShownOptions returns every option text offered so far, without duplicates.
func (s Story) ShownOptions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range s.Steps {
		for _, o := range st.Options {
			if o.StepButtonText == "" || seen[o.StepButtonText] {
				continue
			}
			seen[o.StepButtonText] = true
			out = append(out, o.StepButtonText)
		}
	}
	return out
}

// Last returns the most recent step.
func (s Story) Last() (Step, bool) {
	if len(s.Steps) == 0 {
		return Step{}, false
	}
	return s.Steps[len(s.Steps)-1], true
}
