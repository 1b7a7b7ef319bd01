package adventure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"story_adventure/audio"
	"story_adventure/llm"
	"story_adventure/store"
)

type toolRequest struct {
	tool llm.Tool
	msgs []llm.Message
}

// fakeText answers storyArc and nextSteps calls with canned function calls.
type fakeText struct {
	arc      []llm.FunctionCall
	arcErr   error
	step     []llm.FunctionCall
	stepErr  error
	requests []toolRequest
}

func (f *fakeText) CallTool(ctx context.Context, tool llm.Tool, msgs []llm.Message) ([]llm.FunctionCall, error) {
	f.requests = append(f.requests, toolRequest{tool: tool, msgs: msgs})
	switch tool.Name {
	case arcToolName:
		return f.arc, f.arcErr
	case stepToolName:
		return f.step, f.stepErr
	}
	return nil, fmt.Errorf("unexpected tool %q", tool.Name)
}

func (f *fakeText) last() toolRequest {
	return f.requests[len(f.requests)-1]
}

type fakeImages struct {
	assets  []llm.Asset
	err     error
	prompts []string
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) ([]llm.Asset, error) {
	f.prompts = append(f.prompts, prompt)
	return f.assets, f.err
}

type fakeSpeech struct {
	err          error
	instructions []string
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, instructions string) (llm.Asset, error) {
	f.instructions = append(f.instructions, instructions)
	if f.err != nil {
		return llm.Asset{}, f.err
	}
	return llm.Asset{MIMEType: "audio/wav", Data: []byte("RIFF")}, nil
}

type failingAudio struct{}

func (failingAudio) Save(string, []byte) (string, error) {
	return "", errors.New("disk full")
}

var pngAsset = llm.Asset{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func plotPoints(order ...string) []any {
	tones := map[string]string{
		"setup": "curious", "risingAction": "hopeful", "complication": "tense",
		"climax": "urgent", "resolution": "bittersweet",
	}
	out := make([]any, 0, len(order))
	for _, p := range order {
		out = append(out, map[string]any{"phase": p, "description": p + " beat", "emotionalTone": tones[p]})
	}
	return out
}

func arcCall(steps float64, order ...string) llm.FunctionCall {
	if len(order) == 0 {
		order = []string{"setup", "risingAction", "complication", "climax", "resolution"}
	}
	return llm.FunctionCall{Name: arcToolName, Args: map[string]any{
		"plotPoints":     plotPoints(order...),
		"estimatedSteps": steps,
	}}
}

func stepCall(options int) llm.FunctionCall {
	opts := make([]any, 0, options)
	for i := 0; i < options; i++ {
		opts = append(opts, map[string]any{
			"stepButtonText":        fmt.Sprintf("Option %d", i+1),
			"stepButtonImagePrompt": fmt.Sprintf("image %d", i+1),
		})
	}
	return llm.FunctionCall{Name: stepToolName, Args: map[string]any{
		"thisFrameNarratorPrompt": "The tide swallows the causeway behind you.",
		"thisFrameImagePrompt":    "a lighthouse on a stormy cliff",
		"nextOptions":             opts,
	}}
}

type fixture struct {
	text    *fakeText
	images  *fakeImages
	speech  *fakeSpeech
	stories *store.SQLite
	fs      afero.Fs
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		text: &fakeText{
			arc:  []llm.FunctionCall{arcCall(10)},
			step: []llm.FunctionCall{stepCall(4)},
		},
		images: &fakeImages{assets: []llm.Asset{{MIMEType: "text/plain", Data: []byte("caption")}, pngAsset}},
		speech: &fakeSpeech{},
		fs:     afero.NewMemMapFs(),
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	f.stories = db

	audioStore, err := audio.NewStore(f.fs, "/public/audio", "/audio")
	if err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	f.engine = New(Deps{
		Text:    f.text,
		Images:  f.images,
		Speech:  f.speech,
		Audio:   audioStore,
		Stories: db,
		Log:     log,
	})
	return f
}
