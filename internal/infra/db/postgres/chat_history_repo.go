// File: internal/infra/db/postgres/chat_history_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/repository"
	"ai-companion-chat/internal/infra/metrics"
	"ai-companion-chat/internal/infra/redis"
)

var _ repository.ChatHistoryRepository = (*ChatHistoryRepo)(nil)

// ChatHistoryRepo stores one full chat log per (username, persona) row as a
// JSONB blob. Writes are whole-log upserts, so the newest save always wins.
// The optional cache is read-through and best-effort.
type ChatHistoryRepo struct {
	pool  *pgxpool.Pool
	cache *redis.HistoryCache
}

func NewChatHistoryRepo(pool *pgxpool.Pool, cache *redis.HistoryCache) *ChatHistoryRepo {
	return &ChatHistoryRepo{pool: pool, cache: cache}
}

// Get returns (nil, nil) when the pair has no stored chat yet.
func (r *ChatHistoryRepo) Get(ctx context.Context, username, personaID string) ([]model.ChatMessage, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, username, personaID)
		switch {
		case err != nil:
			// Drop unreadable entries so they stop shadowing the table.
			metrics.HistoryCacheError()
			_ = r.cache.Drop(ctx, username, personaID)
		case cached != nil:
			metrics.HistoryCacheHit()
			return cached, nil
		default:
			metrics.HistoryCacheMiss()
		}
	}

	const q = `SELECT messages FROM chat_logs WHERE username = $1 AND persona_id = $2;`
	var raw []byte
	if err := r.pool.QueryRow(ctx, q, username, personaID).Scan(&raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("chat log read: %w", err)
	}

	var log []model.ChatMessage
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, fmt.Errorf("chat log decode: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.Store(ctx, username, personaID, log)
	}
	return log, nil
}

func (r *ChatHistoryRepo) Save(ctx context.Context, username, personaID string, log []model.ChatMessage) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("chat log encode: %w", err)
	}

	const q = `
INSERT INTO chat_logs (username, persona_id, messages, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (username, persona_id) DO UPDATE SET
  messages = EXCLUDED.messages,
  updated_at = NOW();`
	if _, err := r.pool.Exec(ctx, q, username, personaID, raw); err != nil {
		return fmt.Errorf("chat log upsert: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.Store(ctx, username, personaID, log)
	}
	return nil
}
