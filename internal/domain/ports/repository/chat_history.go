package repository

import (
	"context"

	"ai-companion-chat/internal/domain/model"
)

// ChatHistoryRepository is the remote chat store: one row per (username,
// persona id) with the whole message sequence serialized as a single blob.
// Save overwrites the prior value unconditionally (last-write-wins, no
// optimistic-concurrency check).
type ChatHistoryRepository interface {
	// Get returns the stored log, or an empty slice when no row exists.
	Get(ctx context.Context, username, personaID string) ([]model.ChatMessage, error)
	Save(ctx context.Context, username, personaID string, log []model.ChatMessage) error
}

// AccountRepository persists named accounts. Guest identities are never
// stored.
type AccountRepository interface {
	Create(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
}
