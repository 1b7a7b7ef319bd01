package adventure

import (
	"github.com/google/generative-ai-go/genai"

	"story_adventure/llm"
	"story_adventure/prompts"
	"story_adventure/story"
)

const (
	arcToolName  = "storyArc"
	stepToolName = "nextSteps"
)

func phaseNames() []string {
	out := make([]string, 0, len(story.Phases))
	for _, p := range story.Phases {
		out = append(out, string(p))
	}
	return out
}

var arcTool = llm.Tool{
	Name:        arcToolName,
	Description: prompts.ArcToolDescription,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"plotPoints": {
				Type:        genai.TypeArray,
				Description: "Exactly 5 plot points, one per phase, in phase order",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"phase":         {Type: genai.TypeString, Format: "enum", Enum: phaseNames()},
						"description":   {Type: genai.TypeString, Description: "Description of this story phase"},
						"emotionalTone": {Type: genai.TypeString, Description: "The emotional tone for this phase (e.g. mysterious, tense, joyful)"},
					},
					Required: []string{"phase", "description", "emotionalTone"},
				},
			},
			"estimatedSteps": {
				Type:        genai.TypeInteger,
				Description: "Estimated number of steps to complete the story, between 8 and 12",
			},
		},
		Required: []string{"plotPoints", "estimatedSteps"},
	},
}

var stepTool = llm.Tool{
	Name:        stepToolName,
	Description: prompts.TurnToolDescription,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"thisFrameImagePrompt": {
				Type:        genai.TypeString,
				Description: "The image prompt for this scene",
			},
			"thisFrameNarratorPrompt": {
				Type:        genai.TypeString,
				Description: "The narrator text for this scene",
			},
			"nextOptions": {
				Type:        genai.TypeArray,
				Description: "Exactly 4 distinct options for what the reader does next",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"stepButtonText":        {Type: genai.TypeString, Description: "Short action shown on the choice button"},
						"stepButtonImagePrompt": {Type: genai.TypeString, Description: "A vivid and captivating image prompt for the next step"},
					},
					Required: []string{"stepButtonText", "stepButtonImagePrompt"},
				},
			},
		},
		Required: []string{"thisFrameImagePrompt", "thisFrameNarratorPrompt", "nextOptions"},
	},
}
