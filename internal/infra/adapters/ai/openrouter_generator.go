// File: internal/infra/adapters/ai/openrouter_generator.go
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/infra/metrics"
)

var _ adapter.ResponseGenerator = (*OpenRouterGenerator)(nil)

// OpenRouterGenerator talks to OpenRouter's OpenAI-compatible chat
// completions endpoint. It holds a single key; rotation is a Gemini concern.
type OpenRouterGenerator struct {
	client      openai.Client
	prompts     *PromptBuilder
	model       string
	maxOut      int64
	temperature float64
}

func NewOpenRouterGenerator(apiKey, baseURL, model string, maxOut int, temperature float64, prompts *PromptBuilder) (*OpenRouterGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: empty api key")
	}
	return &OpenRouterGenerator{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		prompts:     prompts,
		model:       model,
		maxOut:      int64(maxOut),
		temperature: temperature,
	}, nil
}

func (g *OpenRouterGenerator) GenerateReply(ctx context.Context, p model.Persona, userText string, history []model.ChatMessage) (string, error) {
	prompt := g.prompts.Build(p, userText, history)

	began := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(g.maxOut),
		Temperature: openai.Float(g.temperature),
	})
	metrics.ObserveGeneratorLatency("openrouter", time.Since(began).Milliseconds())
	if err != nil {
		metrics.GeneratorAttempt("openrouter", false)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.GeneratorAttempt("openrouter", false)
		return "", errors.New("openrouter: empty completion")
	}
	metrics.GeneratorAttempt("openrouter", true)
	return resp.Choices[0].Message.Content, nil
}
