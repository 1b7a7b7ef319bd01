package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gemini "google.golang.org/genai"
)

// Media generates illustrations and narration audio through the Gemini
// multimodal output API.
type Media struct {
	client      *gemini.Client
	imageModel  string
	speechModel string
	voice       string
	timeout     time.Duration
}

// MediaConfig selects the models and voice used by Media.
type MediaConfig struct {
	ImageModel  string
	SpeechModel string
	Voice       string
	Timeout     time.Duration
}

func NewMedia(client *gemini.Client, cfg MediaConfig) *Media {
	return &Media{
		client:      client,
		imageModel:  cfg.ImageModel,
		speechModel: cfg.SpeechModel,
		voice:       cfg.Voice,
		timeout:     cfg.Timeout,
	}
}

func (m *Media) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// GenerateImage requests text and image output for prompt in a 16:9 frame and
// returns every inline asset of the first candidate.
func (m *Media) GenerateImage(ctx context.Context, prompt string) ([]Asset, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Models.GenerateContent(ctx, m.imageModel, gemini.Text(prompt), &gemini.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        &gemini.ImageConfig{AspectRatio: "16:9"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	return inlineAssets(resp), nil
}

// Synthesize reads text aloud with the configured voice, steered by the
// speaking instructions. Raw PCM output is wrapped into a WAV container.
func (m *Media) Synthesize(ctx context.Context, text, instructions string) (Asset, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	prompt := fmt.Sprintf("%s Read the following narration aloud exactly as written:\n%s", instructions, text)
	resp, err := m.client.Models.GenerateContent(ctx, m.speechModel, gemini.Text(prompt), &gemini.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &gemini.SpeechConfig{
			VoiceConfig: &gemini.VoiceConfig{
				PrebuiltVoiceConfig: &gemini.PrebuiltVoiceConfig{VoiceName: m.voice},
			},
		},
	})
	if err != nil {
		return Asset{}, fmt.Errorf("synthesize speech: %w", err)
	}

	for _, a := range inlineAssets(resp) {
		if strings.HasPrefix(a.MIMEType, "audio/") {
			return ToWAV(a)
		}
	}
	return Asset{}, errors.New("synthesize speech: no audio in response")
}

func inlineAssets(resp *gemini.GenerateContentResponse) []Asset {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var out []Asset
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.InlineData == nil {
			continue
		}
		out = append(out, Asset{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
	}
	return out
}
