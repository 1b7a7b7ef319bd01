package story

import (
	"fmt"
	"strings"
)

// HistoryEntry is one previous step as echoed by the client.
type HistoryEntry struct {
	NarratorPrompt     string `json:"narratorPrompt"`
	SelectedButtonText string `json:"selectedButtonText"`
}

// Transcript renders the history as the numbered context block used in prompts.
// An empty history renders as "".
func Transcript(history []HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous story context:\n")
	for i, step := range history {
		fmt.Fprintf(&b, "Step %d: %s\nChosen action: %s\n\n", i+1, step.NarratorPrompt, step.SelectedButtonText)
	}
	return b.String()
}

// AvoidList renders the previously shown options the model must not repeat.
func AvoidList(previous []string) string {
	var items []string
	for _, o := range previous {
		if o = strings.TrimSpace(o); o != "" {
			items = append(items, o)
		}
	}
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previously shown options (avoid repeating these):\n")
	for i, o := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o)
	}
	return b.String()
}
