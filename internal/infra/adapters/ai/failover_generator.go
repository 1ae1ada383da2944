// File: internal/infra/adapters/ai/failover_generator.go
package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
)

var _ adapter.ResponseGenerator = (*FailoverGenerator)(nil)

// FailoverGenerator tries providers in the order given and returns the first
// successful reply. It never fabricates text; exhaustion is reported as
// ErrAllProvidersFailed for the caller to handle.
type FailoverGenerator struct {
	providers []adapter.ResponseGenerator
	names     []string
	log       *zerolog.Logger
}

func NewFailoverGenerator(logger *zerolog.Logger) *FailoverGenerator {
	l := logger.With().Str("component", "FailoverGenerator").Logger()
	return &FailoverGenerator{log: &l}
}

func (f *FailoverGenerator) Register(name string, g adapter.ResponseGenerator) {
	f.providers = append(f.providers, g)
	f.names = append(f.names, name)
}

func (f *FailoverGenerator) GenerateReply(ctx context.Context, p model.Persona, userText string, history []model.ChatMessage) (string, error) {
	var lastErr error
	for i, g := range f.providers {
		reply, err := g.GenerateReply(ctx, p, userText, history)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		f.log.Warn().Err(err).Str("provider", f.names[i]).Msg("provider failed, trying next")
	}
	if lastErr == nil {
		return "", domain.ErrAllProvidersFailed
	}
	return "", fmt.Errorf("%w: %v", domain.ErrAllProvidersFailed, lastErr)
}
