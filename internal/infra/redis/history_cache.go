// File: internal/infra/redis/history_cache.go
package redis

import (
	"context"
	"encoding/json"
	"time"

	"ai-companion-chat/internal/domain/model"
)

// HistoryCache is a read-through cache in front of the chat history table.
// Every operation is best-effort; the table stays the source of truth.
type HistoryCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewHistoryCache(client RedisClient, ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		client: client,
		ttl:    ttl,
	}
}

func historyKey(username, personaID string) string {
	return "chat_log:" + username + ":" + personaID
}

// Get returns (nil, nil) on a clean miss. Any other error, including a
// payload that no longer decodes, is reported so the caller can decide
// whether to drop the entry.
func (c *HistoryCache) Get(ctx context.Context, username, personaID string) ([]model.ChatMessage, error) {
	data, err := c.client.Get(ctx, historyKey(username, personaID))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var log []model.ChatMessage
	if err := json.Unmarshal([]byte(data), &log); err != nil {
		return nil, err
	}
	return log, nil
}

func (c *HistoryCache) Store(ctx context.Context, username, personaID string, log []model.ChatMessage) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, historyKey(username, personaID), data, c.ttl)
}

func (c *HistoryCache) Drop(ctx context.Context, username, personaID string) error {
	return c.client.Del(ctx, historyKey(username, personaID))
}
