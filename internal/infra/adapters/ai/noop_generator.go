// File: internal/infra/adapters/ai/noop_generator.go
package ai

import (
	"context"
	"fmt"

	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
)

var _ adapter.ResponseGenerator = (*NoopGenerator)(nil)

// NoopGenerator is the dev-mode stand-in when no provider keys are
// configured. It echoes a canned in-character line so the full send cycle
// stays exercisable offline.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (NoopGenerator) GenerateReply(_ context.Context, p model.Persona, userText string, _ []model.ChatMessage) (string, error) {
	return fmt.Sprintf("haha achha? 😄 '%s' pe baad mein baat karte hai, abhi %s thodi busy hai", userText, p.Name), nil
}
