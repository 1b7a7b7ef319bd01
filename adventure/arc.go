package adventure

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"story_adventure/apperr"
	"story_adventure/llm"
	"story_adventure/metrics"
	"story_adventure/prompts"
	"story_adventure/story"
)

type arcArgs struct {
	PlotPoints     []story.StoryPhase `json:"plotPoints"`
	EstimatedSteps float64            `json:"estimatedSteps"`
}

// PlanArc asks the model for the hidden five-phase arc of a new story.
func (e *Engine) PlanArc(ctx context.Context, genres []string, prompt string, images []story.Image) (arc story.StoryArc, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("arc", start, err) }()

	subject := prompts.ArcSubjectDefault
	if prompt != "" {
		subject = fmt.Sprintf(prompts.ArcSubject, prompt)
	}
	msg := llm.Message{
		Role:        llm.RoleUser,
		Text:        fmt.Sprintf(prompts.ArcPrompt, strings.Join(genres, ", "), subject),
		Attachments: attachments(images),
	}

	calls, err := e.text.CallTool(ctx, arcTool, []llm.Message{msg})
	if err != nil {
		return story.StoryArc{}, apperr.Generation("failed to generate story arc", err)
	}
	call, ok := llm.Find(calls, arcToolName)
	if !ok {
		return story.StoryArc{}, apperr.Generation("failed to generate story arc", errors.New("model returned no storyArc call"))
	}

	var args arcArgs
	if err := call.Decode(&args); err != nil {
		return story.StoryArc{}, apperr.Generation("failed to generate story arc", err)
	}
	arc, err = story.StoryArc{
		PlotPoints:     args.PlotPoints,
		EstimatedSteps: int(math.Round(args.EstimatedSteps)),
	}.Normalize()
	if err != nil {
		return story.StoryArc{}, apperr.Generation("invalid story arc", err)
	}

	e.log.WithFields(logrus.Fields{
		"genres":          genres,
		"estimated_steps": arc.EstimatedSteps,
	}).Info("story arc planned")
	return arc, nil
}

func attachments(images []story.Image) []llm.Asset {
	if len(images) == 0 {
		return nil
	}
	out := make([]llm.Asset, 0, len(images))
	for _, img := range images {
		out = append(out, llm.Asset{MIMEType: img.MIMEType, Data: img.Data})
	}
	return out
}
