package adapter

import (
	"context"

	"ai-companion-chat/internal/domain/model"
)

// ResponseGenerator produces a persona-voiced reply to the user's message.
// Implementations are stateless between calls; all conversational continuity
// comes from the history the caller supplies. On total provider exhaustion
// the generator returns an error and never fabricates content of its own.
type ResponseGenerator interface {
	GenerateReply(ctx context.Context, persona model.Persona, userText string, history []model.ChatMessage) (string, error)
}
