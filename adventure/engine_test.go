package adventure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"story_adventure/apperr"
	"story_adventure/llm"
	"story_adventure/prompts"
	"story_adventure/story"
)

func arcToken(t *testing.T, steps int) string {
	t.Helper()
	arc := story.StoryArc{EstimatedSteps: steps}
	tones := []string{"curious", "hopeful", "tense", "urgent", "bittersweet"}
	for i, p := range story.Phases {
		arc.PlotPoints = append(arc.PlotPoints, story.StoryPhase{Phase: p, Description: string(p) + " beat", EmotionalTone: tones[i]})
	}
	token, err := arc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func assertContains(t *testing.T, text string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(text, p) {
			t.Errorf("prompt does not contain %q", p)
		}
	}
}

func TestStartNewStory(t *testing.T) {
	f := newFixture(t)
	f.text.arc = []llm.FunctionCall{arcCall(15, "resolution", "climax", "complication", "risingAction", "setup")}

	resp, err := f.engine.Start(context.Background(), story.NewStory{
		Genres: []string{"Horror"},
		Prompt: "a lighthouse",
		Images: []story.Image{{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}}},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if n := len(resp.ToReturnItems.NextOptions); n != 4 {
		t.Fatalf("options = %d", n)
	}
	if !strings.HasPrefix(resp.Base64Image, "data:image/png;base64,") {
		t.Fatalf("base64Image = %q", resp.Base64Image)
	}
	arc, err := story.ParseArc(resp.StoryArc)
	if err != nil {
		t.Fatalf("returned arc: %v", err)
	}
	if arc.EstimatedSteps != story.MaxEstimatedSteps || arc.PlotPoints[0].Phase != story.PhaseSetup {
		t.Fatalf("arc not normalized: %+v", arc)
	}
	if !strings.HasPrefix(resp.StyleGuidance, "Style guidance: ") || !strings.HasPrefix(resp.ToneAccordingToGenres, "Tone guidance: ") {
		t.Fatalf("guidance = %q / %q", resp.StyleGuidance, resp.ToneAccordingToGenres)
	}
	want := &story.NarrationStyle{Instructions: "Speak in a curious tone that matches the current story phase."}
	if diff := cmp.Diff(want, resp.ToReturnItems.NarrationStyle); diff != "" {
		t.Fatalf("narration style (-want +got):\n%s", diff)
	}

	if len(f.text.requests) != 2 || f.text.requests[0].tool.Name != arcToolName {
		t.Fatalf("tool calls = %d", len(f.text.requests))
	}
	assertContains(t, f.text.requests[0].msgs[0].Text, "exactly 5 major plot points for a Horror story", "Create a story arc about: a lighthouse")

	turn := f.text.last()
	if turn.tool.Name != stepToolName || len(turn.msgs) != 1 {
		t.Fatalf("turn request = %s with %d messages", turn.tool.Name, len(turn.msgs))
	}
	if len(turn.msgs[0].Attachments) != 1 {
		t.Fatalf("reference images not attached")
	}
	assertContains(t, turn.msgs[0].Text,
		resp.StoryArc,
		"HIDDEN STORY ARC (never reveal this to the user",
		"Tone guidance: ",
		"Style guidance: ",
		"Current story phase: setup beat",
		"The user wishes the story to be about: a lighthouse",
		"exactly four dramatically different options",
		"NEVER be passive",
		"16:9",
		"MUST NOT mention the art style",
	)

	if len(f.images.prompts) != 1 {
		t.Fatalf("image calls = %d", len(f.images.prompts))
	}
	assertContains(t, f.images.prompts[0], "Generate this hypothetical image: a lighthouse on a stormy cliff.", "Style guidance: ")

	rec, err := f.stories.Get(context.Background(), resp.StoryID)
	if err != nil {
		t.Fatalf("stored story: %v", err)
	}
	if len(rec.Steps) != 1 || rec.Arc != resp.StoryArc {
		t.Fatalf("stored story = %+v", rec)
	}
}

func TestStartArcFailureStopsChain(t *testing.T) {
	for name, tweak := range map[string]func(*fakeText){
		"no calls":     func(f *fakeText) { f.arc = nil },
		"wrong name":   func(f *fakeText) { f.arc = []llm.FunctionCall{{Name: "other"}} },
		"four phases":  func(f *fakeText) { f.arc = []llm.FunctionCall{arcCall(10, "setup", "risingAction", "climax", "resolution")} },
		"dup phase":    func(f *fakeText) { f.arc = []llm.FunctionCall{arcCall(10, "setup", "setup", "complication", "climax", "resolution")} },
		"provider err": func(f *fakeText) { f.arcErr = errors.New("deadline exceeded") },
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			tweak(f.text)

			_, err := f.engine.Start(context.Background(), story.NewStory{Genres: []string{"Comedy"}})
			if !apperr.Is(err, apperr.KindGeneration) {
				t.Fatalf("err = %v, want GenerationFailure", err)
			}
			if len(f.text.requests) != 1 || len(f.images.prompts) != 0 {
				t.Fatalf("chain continued: %d tool calls, %d image calls", len(f.text.requests), len(f.images.prompts))
			}
		})
	}
}

func TestStartTurnFailureSkipsIllustration(t *testing.T) {
	f := newFixture(t)
	f.text.step = []llm.FunctionCall{stepCall(3)}

	_, err := f.engine.Start(context.Background(), story.NewStory{Genres: []string{"Action"}})
	if !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("err = %v", err)
	}
	if len(f.images.prompts) != 0 {
		t.Fatal("illustration ran after a failed turn")
	}
}

func TestGenerateTurnValidatesStep(t *testing.T) {
	tc := TurnContext{Arc: mustArc(t), ArcToken: "arc", Opening: true}
	for name, calls := range map[string][]llm.FunctionCall{
		"three options": {stepCall(3)},
		"five options":  {stepCall(5)},
		"no calls":      nil,
		"wrong name":    {{Name: arcToolName, Args: stepCall(4).Args}},
		"empty narration": {{Name: stepToolName, Args: map[string]any{
			"thisFrameNarratorPrompt": " ",
			"nextOptions":             stepCall(4).Args["nextOptions"],
		}}},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.text.step = calls
			if _, err := f.engine.GenerateTurn(context.Background(), tc); !apperr.Is(err, apperr.KindGeneration) {
				t.Fatalf("err = %v, want GenerationFailure", err)
			}
		})
	}
}

func mustArc(t *testing.T) story.StoryArc {
	t.Helper()
	arc, err := story.ParseArc(arcToken(t, 10))
	if err != nil {
		t.Fatal(err)
	}
	return arc
}

func TestContinueFromClientEcho(t *testing.T) {
	f := newFixture(t)
	token := arcToken(t, 10)

	resp, err := f.engine.Continue(context.Background(), story.Continuation{
		NarratorPrompt:          "The door groans open.",
		OldGeneratedImagePrompt: "a creaking door in moonlight",
		StoryArc:                token,
		StoryHistory: []story.HistoryEntry{
			{NarratorPrompt: "You arrive.", SelectedButtonText: "Climb the tower"},
			{NarratorPrompt: "The stairs crumble.", SelectedButtonText: "Leap the gap"},
			{NarratorPrompt: "The door groans open.", SelectedButtonText: "Storm inside"},
		},
		SelectedButtonText: "Storm inside",
		PreviousOptions:    []string{"Run", "Hide"},
		Genres:             []string{"Horror"},
		InitialPrompt:      "a lighthouse",
	})
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}

	req := f.text.last()
	roles := make([]string, 0, len(req.msgs))
	for _, m := range req.msgs {
		roles = append(roles, m.Role)
	}
	if diff := cmp.Diff([]string{llm.RoleUser, llm.RoleModel, llm.RoleUser, llm.RoleUser}, roles); diff != "" {
		t.Fatalf("message roles (-want +got):\n%s", diff)
	}
	if req.msgs[0].Text != "The door groans open." || req.msgs[1].Text != "a creaking door in moonlight" || req.msgs[2].Text != `I chose: "Storm inside"` {
		t.Fatalf("replayed messages = %+v", req.msgs[:3])
	}

	// 3 of 10 steps played: rising action.
	assertContains(t, req.msgs[3].Text,
		"Previous story context:\nStep 1: You arrive.\nChosen action: Climb the tower",
		"Previously shown options (avoid repeating these):\n1. Run\n2. Hide\n",
		prompts.AvoidInstruction,
		"Remember that this adventure revolves around: a lighthouse",
		"Maintain the tone and elements appropriate for these genres: Horror",
		"Current story phase: risingAction beat",
		"never reveal this to the user",
		token,
	)
	if got := resp.ToReturnItems.NarrationStyle.Instructions; !strings.Contains(got, "hopeful") {
		t.Fatalf("narration style = %q", got)
	}
	if resp.StoryArc != token || resp.StyleGuidance == "" || resp.StoryID != "" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestContinueRejectsBadArc(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Continue(context.Background(), story.Continuation{StoryArc: "{not json"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v", err)
	}
	if len(f.text.requests) != 0 {
		t.Fatal("model called for an invalid arc")
	}
}

func TestContinueFromStoredStory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	started, err := f.engine.Start(ctx, story.NewStory{Genres: []string{"Adventure"}, Prompt: "a lighthouse"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := f.engine.Continue(ctx, story.Continuation{
		StoryID:            started.StoryID,
		SelectedButtonText: "Option 2",
		StoryArc:           "ignored when the story is stored",
	})
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if resp.StoryID != started.StoryID || resp.StoryArc != started.StoryArc {
		t.Fatalf("response = %+v", resp)
	}

	req := f.text.last()
	if req.msgs[0].Text != started.ToReturnItems.ThisFrameNarratorPrompt || req.msgs[1].Text != started.ToReturnItems.ThisFrameImagePrompt {
		t.Fatalf("replayed messages = %+v", req.msgs)
	}
	assertContains(t, req.msgs[len(req.msgs)-1].Text,
		"Step 1: The tide swallows the causeway behind you.\nChosen action: Option 2",
		"1. Option 1\n2. Option 2\n3. Option 3\n4. Option 4\n",
		"Remember that this adventure revolves around: a lighthouse",
	)

	rec, err := f.stories.Get(ctx, started.StoryID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Steps) != 2 || rec.Steps[0].Choice != "Option 2" || rec.Steps[1].Choice != "" {
		t.Fatalf("stored steps = %+v", rec.Steps)
	}
}

func TestContinueUnknownStory(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Continue(context.Background(), story.Continuation{StoryID: "nope"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestIllustrateIsBestEffort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.images.err = errors.New("quota")
	if got := f.engine.Illustrate(ctx, "a cliff", ""); got != "" {
		t.Fatalf("provider error: got %q", got)
	}
	f.images.err, f.images.assets = nil, []llm.Asset{{MIMEType: "text/plain", Data: []byte("no")}}
	if got := f.engine.Illustrate(ctx, "a cliff", ""); got != "" {
		t.Fatalf("no image: got %q", got)
	}
	f.images.assets = []llm.Asset{{MIMEType: "image/jpeg", Data: []byte{1}}, pngAsset}
	if got := f.engine.Illustrate(ctx, "a cliff", ""); got != "data:image/jpeg;base64,AQ==" {
		t.Fatalf("first image: got %q", got)
	}
}

func TestSynthesize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.engine.Synthesize(ctx, "", "calm", "t1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty text: %v", err)
	}
	if _, err := f.engine.Synthesize(ctx, "Hello", "calm", "../x"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unsafe id: %v", err)
	}

	url, err := f.engine.Synthesize(ctx, "Hello", "calm", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(url, "t1") {
		t.Fatalf("url = %q", url)
	}
	if ok, _ := afero.Exists(f.fs, "/public/audio/speech-t1.wav"); !ok {
		t.Fatal("audio file not written")
	}
	if _, err := f.engine.Synthesize(ctx, "Hello", "", "t2"); err != nil {
		t.Fatal(err)
	}
	want := []string{"Speak in a calm tone.", prompts.DefaultSpeechTone}
	if diff := cmp.Diff(want, f.speech.instructions); diff != "" {
		t.Fatalf("instructions (-want +got):\n%s", diff)
	}

	f.speech.err = errors.New("tts down")
	if _, err := f.engine.Synthesize(ctx, "Hello", "", "t3"); !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("speech failure: %v", err)
	}

	f.speech.err = nil
	f.engine.audio = failingAudio{}
	if _, err := f.engine.Synthesize(ctx, "Hello", "", "t4"); !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("storage failure: %v", err)
	}
}

func TestSpeechInstructions(t *testing.T) {
	for tone, want := range map[string]string{
		"":                                  prompts.DefaultSpeechTone,
		"mysterious":                        "Speak in a mysterious tone.",
		"Speak in a tense tone that builds": "Speak in a tense tone that builds",
		"Whisper everything.":               "Whisper everything.",
	} {
		if got := speechInstructions(tone); got != want {
			t.Errorf("speechInstructions(%q) = %q, want %q", tone, got, want)
		}
	}
}

func TestNextFrame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.engine.NextFrame(ctx, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty input: %v", err)
	}

	resp, err := f.engine.NextFrame(ctx, []FramePrompt{
		{Prompt: "enter the cave", PreviousImagePrompt: "a cave mouth"},
		{Prompt: "light a torch", PreviousImagePrompt: "a torch-lit tunnel"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.ToReturnItems.NextOptions) != 4 || resp.Base64Image == "" {
		t.Fatalf("response = %+v", resp)
	}
	assertContains(t, f.text.last().msgs[0].Text,
		"a cave mouth\n\na torch-lit tunnel",
		"The next image prompt should be something like light a torch.",
	)

	f.text.step = []llm.FunctionCall{stepCall(5)}
	if _, err := f.engine.NextFrame(ctx, []FramePrompt{{Prompt: "x"}}); !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("five options: %v", err)
	}
}
