// Package adventure chains the generative stages of a story turn: arc
// planning, scene generation, illustration and narration.
package adventure

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"story_adventure/llm"
	"story_adventure/store"
)

// ToolCaller issues a structured call forced onto a single function.
type ToolCaller interface {
	CallTool(ctx context.Context, tool llm.Tool, msgs []llm.Message) ([]llm.FunctionCall, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]llm.Asset, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, instructions string) (llm.Asset, error)
}

// AudioStore persists narration audio and returns its public URL.
type AudioStore interface {
	Save(requestID string, data []byte) (string, error)
}

// StoryStore records server-owned stories.
type StoryStore interface {
	Create(ctx context.Context, s store.Story) error
	Get(ctx context.Context, id string) (store.Story, error)
	AppendStep(ctx context.Context, id string, st store.Step) (int, error)
	RecordChoice(ctx context.Context, id string, idx int, choice string) error
}

// Deps are the collaborators of an Engine. Stories may be nil, in which case
// stories are not recorded and continuations must echo the arc.
type Deps struct {
	Text    ToolCaller
	Images  ImageGenerator
	Speech  SpeechSynthesizer
	Audio   AudioStore
	Stories StoryStore
	Log     logrus.FieldLogger
}

type Engine struct {
	text    ToolCaller
	images  ImageGenerator
	speech  SpeechSynthesizer
	audio   AudioStore
	stories StoryStore
	log     logrus.FieldLogger
	newID   func() string
}

func New(d Deps) *Engine {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		text:    d.Text,
		images:  d.Images,
		speech:  d.Speech,
		audio:   d.Audio,
		stories: d.Stories,
		log:     log,
		newID:   uuid.NewString,
	}
}
