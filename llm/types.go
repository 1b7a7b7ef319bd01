// Package llm wraps the Gemini provider behind the three narrow capabilities
// the story pipeline needs: forced structured tool calls, image generation and
// speech synthesis.
package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// Roles used in Message.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Asset is a binary payload returned by, or sent to, the provider.
type Asset struct {
	MIMEType string
	Data     []byte
}

// Message is one conversation turn. Attachments are sent inline after the text.
type Message struct {
	Role        string
	Text        string
	Attachments []Asset
}

// Tool declares the single function the model is forced to call.
type Tool struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// FunctionCall is a structured call returned by the model.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// Decode converts the call arguments into v.
func (c FunctionCall) Decode(v any) error {
	b, err := json.Marshal(c.Args)
	if err != nil {
		return fmt.Errorf("encode %s args: %w", c.Name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s args: %w", c.Name, err)
	}
	return nil
}

// Find returns the first call with the given name.
func Find(calls []FunctionCall, name string) (FunctionCall, bool) {
	for _, c := range calls {
		if c.Name == name {
			return c, true
		}
	}
	return FunctionCall{}, false
}
