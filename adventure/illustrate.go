package adventure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"story_adventure/metrics"
	"story_adventure/prompts"
	"story_adventure/story"
)

var errNoImage = errors.New("no image in response")

// Illustrate renders the scene and returns it as a data URI. Illustration is
// best effort: on any failure it logs a warning and returns "".
func (e *Engine) Illustrate(ctx context.Context, imagePrompt, styleGuidance string) string {
	start := time.Now()
	uri, err := e.illustrate(ctx, imagePrompt, styleGuidance)
	metrics.ObserveStage("image", start, err)
	if err != nil {
		e.log.WithError(err).Warn("illustration failed, continuing without image")
		return ""
	}
	return uri
}

func (e *Engine) illustrate(ctx context.Context, imagePrompt, styleGuidance string) (string, error) {
	if strings.TrimSpace(imagePrompt) == "" {
		return "", errors.New("empty image prompt")
	}
	assets, err := e.images.GenerateImage(ctx, fmt.Sprintf(prompts.ImagePrompt, imagePrompt, styleGuidance))
	if err != nil {
		return "", err
	}
	for _, a := range assets {
		if strings.HasPrefix(a.MIMEType, "image/") && len(a.Data) > 0 {
			return story.DataURI(a.MIMEType, a.Data), nil
		}
	}
	return "", errNoImage
}
