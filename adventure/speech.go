package adventure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"story_adventure/apperr"
	"story_adventure/audio"
	"story_adventure/metrics"
	"story_adventure/prompts"
)

// Synthesize narrates text in the given tone, stores the audio under
// requestID and returns its URL.
func (e *Engine) Synthesize(ctx context.Context, text, tone, requestID string) (url string, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("narratorPrompt is required")
	}
	if !audio.ValidID(requestID) {
		return "", apperr.Validation("timestamp must be 1-64 letters, digits, '-' or '_'")
	}

	start := time.Now()
	defer func() { metrics.ObserveStage("speech", start, err) }()

	asset, err := e.speech.Synthesize(ctx, text, speechInstructions(tone))
	if err != nil {
		return "", apperr.Generation("failed to generate speech", err)
	}
	url, err = e.audio.Save(requestID, asset.Data)
	if err != nil {
		return "", apperr.Storage("failed to store speech", err)
	}

	e.log.WithFields(logrus.Fields{"request_id": requestID, "bytes": len(asset.Data)}).Info("narration synthesized")
	return url, nil
}

// speechInstructions turns a tone into speaking instructions. A bare tone such
// as "calm" is wrapped; a full sentence is used as given.
func speechInstructions(tone string) string {
	tone = strings.TrimSpace(tone)
	switch {
	case tone == "":
		return prompts.DefaultSpeechTone
	case strings.HasSuffix(tone, ".") || strings.HasSuffix(tone, "!") || strings.HasPrefix(strings.ToLower(tone), "speak "):
		return tone
	default:
		return fmt.Sprintf(prompts.SpeechTone, tone)
	}
}
