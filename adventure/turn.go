package adventure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"story_adventure/apperr"
	"story_adventure/llm"
	"story_adventure/metrics"
	"story_adventure/prompts"
	"story_adventure/story"
)

// TurnContext is everything one scene is generated from.
type TurnContext struct {
	Genres   []string
	Guidance story.Guidance
	Arc      story.StoryArc
	ArcToken string
	// History holds the steps played so far; its length drives phase selection.
	History         []story.HistoryEntry
	PreviousOptions []string
	Prompt          string

	// Opening marks the first scene of a story. Images are only sent then.
	Opening bool
	Images  []story.Image

	// Replayed ahead of the instruction on continuation turns.
	PreviousNarration   string
	PreviousImagePrompt string
	Choice              string
}

// Phase is the arc phase the turn is written in.
func (tc TurnContext) Phase() story.StoryPhase {
	return story.SelectPhase(tc.Arc, len(tc.History))
}

// GenerateTurn produces the next scene with exactly four options and the
// narration style of the current phase.
func (e *Engine) GenerateTurn(ctx context.Context, tc TurnContext) (step story.StoryStep, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("turn", start, err) }()

	phase := tc.Phase()
	step, err = e.callStep(ctx, turnMessages(tc, phase))
	if err != nil {
		return story.StoryStep{}, err
	}
	step.NarrationStyle = story.NarrationFor(phase)

	e.log.WithFields(logrus.Fields{
		"phase": phase.Phase,
		"step":  len(tc.History) + 1,
	}).Info("story turn generated")
	return step, nil
}

func (e *Engine) callStep(ctx context.Context, msgs []llm.Message) (story.StoryStep, error) {
	calls, err := e.text.CallTool(ctx, stepTool, msgs)
	if err != nil {
		return story.StoryStep{}, apperr.Generation("failed to generate story response", err)
	}
	if len(calls) == 0 {
		return story.StoryStep{}, apperr.Generation("no tool calls returned", nil)
	}
	call, ok := llm.Find(calls, stepToolName)
	if !ok {
		return story.StoryStep{}, apperr.Generation("failed to generate story response", errors.New("model returned no nextSteps call"))
	}

	var step story.StoryStep
	if err := call.Decode(&step); err != nil {
		return story.StoryStep{}, apperr.Generation("failed to generate story response", err)
	}
	step.NarrationStyle = nil
	if err := step.Validate(); err != nil {
		return story.StoryStep{}, apperr.Generation("invalid story step", err)
	}
	return step, nil
}

func turnMessages(tc TurnContext, phase story.StoryPhase) []llm.Message {
	if tc.Opening {
		return []llm.Message{{
			Role:        llm.RoleUser,
			Text:        introInstruction(tc, phase),
			Attachments: attachments(tc.Images),
		}}
	}

	var msgs []llm.Message
	if tc.PreviousNarration != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: tc.PreviousNarration})
	}
	if tc.PreviousImagePrompt != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleModel, Text: tc.PreviousImagePrompt})
	}
	if tc.Choice != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: fmt.Sprintf(prompts.ChoiceMessage, tc.Choice)})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Text: continueInstruction(tc, phase)})
}

func introInstruction(tc TurnContext, phase story.StoryPhase) string {
	var subject []string
	if tc.Prompt != "" {
		subject = append(subject, fmt.Sprintf(prompts.IntroSubject, tc.Prompt))
	}
	if len(tc.Images) > 0 {
		subject = append(subject, prompts.IntroImages)
	}
	return fmt.Sprintf(prompts.IntroPrompt,
		strings.Join(tc.Genres, ", "),
		tc.Guidance.ImageStyle,
		tc.Guidance.Tone,
		phase.Description,
		phase.EmotionalTone,
		prompts.TurnRules,
		tc.ArcToken,
		strings.Join(subject, "\n"),
	)
}

func continueInstruction(tc TurnContext, phase story.StoryPhase) string {
	var subject, genres, avoid string
	if tc.Prompt != "" {
		subject = fmt.Sprintf(prompts.ContinueSubject, tc.Prompt)
	}
	if len(tc.Genres) > 0 {
		genres = fmt.Sprintf(prompts.ContinueGenres, strings.Join(tc.Genres, ", "))
	}
	if list := story.AvoidList(tc.PreviousOptions); list != "" {
		avoid = list + prompts.AvoidInstruction
	}
	return fmt.Sprintf(prompts.ContinuePrompt,
		story.Transcript(tc.History),
		subject,
		genres,
		tc.Guidance.ImageStyle,
		tc.Guidance.Tone,
		phase.Description,
		phase.EmotionalTone,
		prompts.TurnRules,
		avoid,
		tc.ArcToken,
	)
}
