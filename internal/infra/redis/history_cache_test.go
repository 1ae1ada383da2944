// File: internal/infra/redis/history_cache_test.go
package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"ai-companion-chat/internal/domain/model"
)

type fakeRedis struct {
	data    map[string]string
	downErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unexpected value type")
	}
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	if f.downErr != nil {
		return "", f.downErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestHistoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewHistoryCache(newFakeRedis(), time.Minute)

	log := []model.ChatMessage{
		model.NewPersonaMessage("hii 😊"),
		model.NewUserMessage("hello", model.MessageText),
	}
	if err := cache.Store(ctx, "rahul", "priya", log); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := cache.Get(ctx, "rahul", "priya")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0].ID != log[0].ID || got[1].Body != "hello" {
		t.Errorf("cached log diverged: %+v", got)
	}

	// Keys are scoped per persona.
	if got, err := cache.Get(ctx, "rahul", "kavya"); err != nil || got != nil {
		t.Errorf("want clean miss for a different persona, got (%v, %v)", got, err)
	}

	if err := cache.Drop(ctx, "rahul", "priya"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if got, err := cache.Get(ctx, "rahul", "priya"); err != nil || got != nil {
		t.Errorf("want clean miss after drop, got (%v, %v)", got, err)
	}
}

func TestHistoryCacheGetErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("outage is not a miss", func(t *testing.T) {
		client := newFakeRedis()
		client.downErr = errors.New("connection refused")
		cache := NewHistoryCache(client, time.Minute)

		if _, err := cache.Get(ctx, "rahul", "priya"); err == nil {
			t.Error("expected an error when the client is down")
		}
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client := newFakeRedis()
		cache := NewHistoryCache(client, time.Minute)

		client.data[historyKey("rahul", "priya")] = "{not json"
		if _, err := cache.Get(ctx, "rahul", "priya"); err == nil {
			t.Error("expected an error for an undecodable payload")
		}
	})
}
