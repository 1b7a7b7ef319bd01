package llm

import (
	"context"
	"encoding/base64"
	"fmt"
)

// 1x1 PNG pixel.
const mockPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

// Mock answers every capability with canned content so the service can run
// without provider credentials.
type Mock struct{}

func (Mock) CallTool(ctx context.Context, tool Tool, msgs []Message) ([]FunctionCall, error) {
	switch tool.Name {
	case "storyArc":
		return []FunctionCall{{Name: tool.Name, Args: mockArc()}}, nil
	case "nextSteps":
		return []FunctionCall{{Name: tool.Name, Args: mockStep(len(msgs))}}, nil
	default:
		return nil, fmt.Errorf("mock: unknown tool %q", tool.Name)
	}
}

func (Mock) GenerateImage(ctx context.Context, prompt string) ([]Asset, error) {
	data, err := base64.StdEncoding.DecodeString(mockPixel)
	if err != nil {
		return nil, err
	}
	return []Asset{{MIMEType: "image/png", Data: data}}, nil
}

func (Mock) Synthesize(ctx context.Context, text, instructions string) (Asset, error) {
	// Half a second of silence.
	return ToWAV(Asset{MIMEType: "audio/L16;rate=24000", Data: make([]byte, defaultSampleRate)})
}

func mockArc() map[string]any {
	phases := []struct{ phase, desc, tone string }{
		{"setup", "A stranger arrives at the edge of an unfamiliar world.", "curious"},
		{"risingAction", "A small favour draws the stranger into a larger scheme.", "hopeful"},
		{"complication", "An ally's secret turns the scheme against them.", "tense"},
		{"climax", "Everything hinges on one reckless choice at the summit.", "urgent"},
		{"resolution", "The world settles, changed by what was chosen.", "bittersweet"},
	}
	points := make([]any, 0, len(phases))
	for _, p := range phases {
		points = append(points, map[string]any{"phase": p.phase, "description": p.desc, "emotionalTone": p.tone})
	}
	return map[string]any{"plotPoints": points, "estimatedSteps": 10}
}

func mockStep(turn int) map[string]any {
	options := []any{
		map[string]any{"stepButtonText": "Charge across the rope bridge", "stepButtonImagePrompt": "a swaying rope bridge over a misty gorge"},
		map[string]any{"stepButtonText": "Steal the guard's lantern", "stepButtonImagePrompt": "a glowing lantern snatched in a dark corridor"},
		map[string]any{"stepButtonText": "Challenge the ferryman to a wager", "stepButtonImagePrompt": "a hooded ferryman on a moonlit river"},
		map[string]any{"stepButtonText": "Set the signal fire ablaze", "stepButtonImagePrompt": "a hilltop beacon bursting into flame"},
	}
	return map[string]any{
		"thisFrameNarratorPrompt": fmt.Sprintf("Scene %d: the path ahead splits, and something is following you.", turn),
		"thisFrameImagePrompt":    "a forked mountain path at dusk, lanterns in the distance",
		"nextOptions":             options,
	}
}
