package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// Gemini issues forced function calls against a Gemini text model.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(client *genai.Client, model string, timeout time.Duration) *Gemini {
	return &Gemini{client: client, model: model, timeout: timeout}
}

// CallTool sends msgs with tool as the only callable function and the calling
// mode forced, and returns the function calls of the first candidate. The last
// message is sent as the new turn; earlier ones become chat history.
func (g *Gemini) CallTool(ctx context.Context, tool Tool, msgs []Message) ([]FunctionCall, error) {
	if len(msgs) == 0 {
		return nil, errors.New("no messages")
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// A fresh model per call: Tools and ToolConfig are per-request settings and
	// the client is shared between requests.
	m := g.client.GenerativeModel(g.model)
	m.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		}},
	}}
	m.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{tool.Name},
		},
	}

	cs := m.StartChat()
	for _, msg := range msgs[:len(msgs)-1] {
		cs.History = append(cs.History, toContent(msg))
	}
	last := msgs[len(msgs)-1]

	resp, err := cs.SendMessage(ctx, toParts(last)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tool.Name, err)
	}
	return functionCalls(resp), nil
}

func toContent(msg Message) *genai.Content {
	role := msg.Role
	if role != RoleModel {
		role = RoleUser
	}
	return &genai.Content{Role: role, Parts: toParts(msg)}
}

func toParts(msg Message) []genai.Part {
	parts := make([]genai.Part, 0, 1+len(msg.Attachments))
	parts = append(parts, genai.Text(msg.Text))
	for _, a := range msg.Attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}
	return parts
}

func functionCalls(resp *genai.GenerateContentResponse) []FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range resp.Candidates[0].Content.Parts {
		if fc, ok := p.(genai.FunctionCall); ok {
			calls = append(calls, FunctionCall{Name: fc.Name, Args: fc.Args})
		}
	}
	return calls
}
