// File: internal/infra/adapters/ai/gemini_generator.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/infra/metrics"
)

var _ adapter.ResponseGenerator = (*GeminiGenerator)(nil)

// keyRing is the rotation cursor over a fixed set of API keys. The cursor
// belongs to the generator instance, so concurrent generators never share
// rotation state. After a success the cursor moves past the key that served,
// spreading quota across the ring.
type keyRing struct {
	mu     sync.Mutex
	size   int
	cursor int
}

func newKeyRing(size int) *keyRing {
	return &keyRing{size: size}
}

func (r *keyRing) start() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

func (r *keyRing) advance(used int) {
	r.mu.Lock()
	r.cursor = (used + 1) % r.size
	r.mu.Unlock()
}

// GeminiGenerator tries every configured API key in ring order for each
// reply. One SDK client is built per key up front.
type GeminiGenerator struct {
	clients []*genai.Client
	ring    *keyRing
	prompts *PromptBuilder

	model       string
	maxOut      int32
	temperature float32
}

func NewGeminiGenerator(ctx context.Context, keys []string, baseURL, model string, maxOut int, temperature float64, prompts *PromptBuilder) (*GeminiGenerator, error) {
	if len(keys) == 0 {
		return nil, errors.New("gemini: no api keys")
	}
	clients := make([]*genai.Client, 0, len(keys))
	for _, key := range keys {
		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{
				BaseURL: baseURL,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: client for key %d: %w", len(clients), err)
		}
		clients = append(clients, c)
	}
	return &GeminiGenerator{
		clients:     clients,
		ring:        newKeyRing(len(clients)),
		prompts:     prompts,
		model:       model,
		maxOut:      int32(maxOut),
		temperature: float32(temperature),
	}, nil
}

// GenerateReply walks the key ring starting at the cursor. The first key that
// returns text wins and the cursor advances past it; if every key fails the
// last error is returned.
func (g *GeminiGenerator) GenerateReply(ctx context.Context, p model.Persona, userText string, history []model.ChatMessage) (string, error) {
	prompt := g.prompts.Build(p, userText, history)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxOut,
		Temperature:     genai.Ptr(g.temperature),
		TopP:            genai.Ptr(float32(0.8)),
	}

	start := g.ring.start()
	var lastErr error
	for i := 0; i < len(g.clients); i++ {
		idx := (start + i) % len(g.clients)
		began := time.Now()
		resp, err := g.clients[idx].Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		metrics.ObserveGeneratorLatency("gemini", time.Since(began).Milliseconds())
		if err != nil {
			metrics.GeneratorAttempt("gemini", false)
			lastErr = err
			continue
		}
		text := resp.Text()
		if text == "" {
			metrics.GeneratorAttempt("gemini", false)
			lastErr = errors.New("gemini: empty candidate")
			continue
		}
		metrics.GeneratorAttempt("gemini", true)
		g.ring.advance(idx)
		return text, nil
	}
	return "", fmt.Errorf("gemini: all %d keys failed: %w", len(g.clients), lastErr)
}
