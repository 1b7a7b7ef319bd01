package adventure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"story_adventure/apperr"
	"story_adventure/llm"
	"story_adventure/metrics"
	"story_adventure/prompts"
	"story_adventure/store"
	"story_adventure/story"
)

// Start plans the arc of a new story and generates its opening scene.
func (e *Engine) Start(ctx context.Context, req story.NewStory) (story.ResponseData, error) {
	guidance := story.DeriveGuidance(req.Genres)

	arc, err := e.PlanArc(ctx, req.Genres, req.Prompt, req.Images)
	if err != nil {
		return story.ResponseData{}, err
	}
	token, err := arc.Encode()
	if err != nil {
		return story.ResponseData{}, apperr.Generation("failed to encode story arc", err)
	}

	step, err := e.GenerateTurn(ctx, TurnContext{
		Genres:   req.Genres,
		Guidance: guidance,
		Arc:      arc,
		ArcToken: token,
		Prompt:   req.Prompt,
		Opening:  true,
		Images:   req.Images,
	})
	if err != nil {
		return story.ResponseData{}, err
	}

	image := e.Illustrate(ctx, step.ThisFrameImagePrompt, guidance.ImageStyle)
	id := e.record(ctx, req, token, step)
	metrics.StoriesStarted.Inc()

	return story.ResponseData{
		ToReturnItems:         step,
		Base64Image:           image,
		StyleGuidance:         guidance.ImageStyle,
		StoryArc:              token,
		ToneAccordingToGenres: guidance.Tone,
		StoryID:               id,
	}, nil
}

// record stores a new story and returns its id, or "" when it could not be
// stored.
func (e *Engine) record(ctx context.Context, req story.NewStory, arc string, step story.StoryStep) string {
	if e.stories == nil {
		return ""
	}
	s := store.Story{
		ID:        e.newID(),
		Genres:    req.Genres,
		Prompt:    req.Prompt,
		Arc:       arc,
		CreatedAt: time.Now(),
		Steps:     []store.Step{stepRecord(step)},
	}
	if err := e.stories.Create(ctx, s); err != nil {
		e.log.WithError(err).Warn("failed to record story")
		return ""
	}
	return s.ID
}

func stepRecord(step story.StoryStep) store.Step {
	return store.Step{
		NarratorPrompt: step.ThisFrameNarratorPrompt,
		ImagePrompt:    step.ThisFrameImagePrompt,
		Options:        step.NextOptions,
	}
}

// Continue generates the scene that follows the reader's choice. With a story
// id the recorded arc and history are used and the client's copies ignored.
func (e *Engine) Continue(ctx context.Context, req story.Continuation) (story.ResponseData, error) {
	var (
		tc     TurnContext
		lastIx = -1
	)
	if req.StoryID != "" {
		rec, last, err := e.loadStory(ctx, req.StoryID)
		if err != nil {
			return story.ResponseData{}, err
		}
		tc, err = storedTurn(rec, last, req.SelectedButtonText)
		if err != nil {
			return story.ResponseData{}, err
		}
		lastIx = last.Index
	} else {
		arc, err := story.ParseArc(req.StoryArc)
		if err != nil {
			return story.ResponseData{}, apperr.Validation("invalid story arc: %v", err)
		}
		tc = TurnContext{
			Genres:              req.Genres,
			Arc:                 arc,
			ArcToken:            req.StoryArc,
			History:             req.StoryHistory,
			PreviousOptions:     req.PreviousOptions,
			Prompt:              req.InitialPrompt,
			PreviousNarration:   req.NarratorPrompt,
			PreviousImagePrompt: req.OldGeneratedImagePrompt,
			Choice:              req.SelectedButtonText,
		}
	}

	var styleGuidance string
	if len(tc.Genres) > 0 {
		tc.Guidance = story.DeriveGuidance(tc.Genres)
		styleGuidance = tc.Guidance.ImageStyle
	}

	step, err := e.GenerateTurn(ctx, tc)
	if err != nil {
		return story.ResponseData{}, err
	}
	image := e.Illustrate(ctx, step.ThisFrameImagePrompt, styleGuidance)

	if req.StoryID != "" {
		e.advance(ctx, req.StoryID, lastIx, req.SelectedButtonText, step)
	}

	return story.ResponseData{
		ToReturnItems: step,
		Base64Image:   image,
		StyleGuidance: styleGuidance,
		StoryArc:      tc.ArcToken,
		StoryID:       req.StoryID,
	}, nil
}

func (e *Engine) loadStory(ctx context.Context, id string) (store.Story, store.Step, error) {
	if e.stories == nil {
		return store.Story{}, store.Step{}, apperr.NotFound("story %q not found", id)
	}
	rec, err := e.stories.Get(ctx, id)
	if err != nil {
		return store.Story{}, store.Step{}, err
	}
	last, ok := rec.Last()
	if !ok {
		return store.Story{}, store.Step{}, apperr.Storage("story has no steps", nil)
	}
	return rec, last, nil
}

func storedTurn(rec store.Story, last store.Step, choice string) (TurnContext, error) {
	arc, err := story.ParseArc(rec.Arc)
	if err != nil {
		return TurnContext{}, apperr.Storage("stored story arc is corrupt", err)
	}
	history := rec.History()
	if choice != "" {
		history[len(history)-1].SelectedButtonText = choice
	}
	return TurnContext{
		Genres:              rec.Genres,
		Arc:                 arc,
		ArcToken:            rec.Arc,
		History:             history,
		PreviousOptions:     rec.ShownOptions(),
		Prompt:              rec.Prompt,
		PreviousNarration:   last.NarratorPrompt,
		PreviousImagePrompt: last.ImagePrompt,
		Choice:              choice,
	}, nil
}

// advance records the choice and the new step. Failures are logged only.
func (e *Engine) advance(ctx context.Context, id string, lastIx int, choice string, step story.StoryStep) {
	log := e.log.WithField("story_id", id)
	if choice != "" {
		if err := e.stories.RecordChoice(ctx, id, lastIx, choice); err != nil {
			log.WithError(err).Warn("failed to record choice")
		}
	}
	if _, err := e.stories.AppendStep(ctx, id, stepRecord(step)); err != nil {
		log.WithError(err).Warn("failed to record step")
	}
}

// FramePrompt is one earlier frame: the reader's input and the image prompt
// generated for it.
type FramePrompt struct {
	Prompt              string `json:"prompt"`
	PreviousImagePrompt string `json:"previousImagePrompt"`
}

// NextFrame generates a scene from earlier prompt pairs alone, without an arc.
func (e *Engine) NextFrame(ctx context.Context, frames []FramePrompt) (resp story.ResponseData, err error) {
	if len(frames) == 0 {
		return story.ResponseData{}, apperr.Validation("input must contain at least one frame")
	}

	start := time.Now()
	defer func() { metrics.ObserveStage("nextframe", start, err) }()

	imagePrompts := make([]string, 0, len(frames))
	inputs := make([]string, 0, len(frames))
	for _, f := range frames {
		imagePrompts = append(imagePrompts, f.PreviousImagePrompt)
		inputs = append(inputs, f.Prompt)
	}
	text := fmt.Sprintf(prompts.NextFramePrompt,
		strings.Join(imagePrompts, "\n\n"),
		strings.Join(inputs, "\n\n"),
		frames[len(frames)-1].Prompt,
		prompts.TurnRules,
	)

	step, err := e.callStep(ctx, []llm.Message{{Role: llm.RoleUser, Text: text}})
	if err != nil {
		return story.ResponseData{}, err
	}
	e.log.WithFields(logrus.Fields{"frames": len(frames)}).Info("next frame generated")

	return story.ResponseData{
		ToReturnItems: step,
		Base64Image:   e.Illustrate(ctx, step.ThisFrameImagePrompt, ""),
	}, nil
}
