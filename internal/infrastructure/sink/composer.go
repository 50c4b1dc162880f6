package sink

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"solarcalc/internal/domain/entity"
)

// Composer turns a run report into a short human post with a single chat
// completion. Optional: sinks fall back to the template summary when it is
// absent or fails.
type Composer struct {
	client *openai.Client
	model  string
}

func NewComposer(apiKey, model string) *Composer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Composer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const composerSystemPrompt = "You write one short, factual social media post " +
	"(max 240 characters) summarizing a rooftop solar analysis. No hashtags, " +
	"no emojis, no invented numbers."

func (c *Composer) Compose(ctx context.Context, report entity.RunReport) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: TextReport(report)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}
