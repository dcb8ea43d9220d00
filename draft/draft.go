// Package draft generates first-pass agent instructions from a short
// description using a text-completion backend.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("draft: model returned an empty completion")

// Completer is the single text-completion call the drafting feature needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAI implements Completer with the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a Completer backed by the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  openai.GPT3Dot5Turbo,
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("draft: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// Instructions drafts a system prompt for a voice agent named name, guided
// by the free-text description. The result is meant as a starting point the
// user edits, not a finished prompt.
func Instructions(ctx context.Context, c Completer, name, description string) (string, error) {
	prompt := buildPrompt(name, description)
	out, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func buildPrompt(name, description string) string {
	var b strings.Builder
	b.WriteString("Write concise system instructions for a conversational voice agent.\n")
	fmt.Fprintf(&b, "Agent name: %s\n", name)
	if description != "" {
		fmt.Fprintf(&b, "What the agent does: %s\n", description)
	}
	b.WriteString("Cover tone, the agent's responsibilities, and when it should hand the conversation off. Answer with the instructions only.")
	return b.String()
}
