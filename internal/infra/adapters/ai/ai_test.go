// File: internal/infra/adapters/ai/ai_test.go
package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/model"

	"github.com/rs/zerolog"
)

func TestKeyRingRotation(t *testing.T) {
	r := newKeyRing(3)

	if got := r.start(); got != 0 {
		t.Fatalf("initial cursor = %d, want 0", got)
	}

	// Success on key 0 moves the cursor to 1.
	r.advance(0)
	if got := r.start(); got != 1 {
		t.Errorf("cursor after advance(0) = %d, want 1", got)
	}

	// Success on the last key wraps to 0.
	r.advance(2)
	if got := r.start(); got != 0 {
		t.Errorf("cursor after advance(2) = %d, want 0", got)
	}

	// The cursor moves past the key that served, not past the start index.
	r.advance(1)
	if got := r.start(); got != 2 {
		t.Errorf("cursor after advance(1) = %d, want 2", got)
	}
}

type scriptedGenerator struct {
	reply string
	err   error
	calls int
}

func (s *scriptedGenerator) GenerateReply(context.Context, model.Persona, string, []model.ChatMessage) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestFailoverGenerator(t *testing.T) {
	ctx := context.Background()
	nop := zerolog.Nop()
	persona := model.Persona{ID: "priya", Name: "Priya"}

	t.Run("first success wins and later providers stay idle", func(t *testing.T) {
		primary := &scriptedGenerator{reply: "from primary"}
		backup := &scriptedGenerator{reply: "from backup"}
		f := NewFailoverGenerator(&nop)
		f.Register("primary", primary)
		f.Register("backup", backup)

		reply, err := f.GenerateReply(ctx, persona, "hi", nil)
		if err != nil {
			t.Fatalf("GenerateReply: %v", err)
		}
		if reply != "from primary" {
			t.Errorf("reply = %q", reply)
		}
		if backup.calls != 0 {
			t.Errorf("backup called %d times", backup.calls)
		}
	})

	t.Run("falls through failures in registration order", func(t *testing.T) {
		primary := &scriptedGenerator{err: errors.New("quota")}
		backup := &scriptedGenerator{reply: "from backup"}
		f := NewFailoverGenerator(&nop)
		f.Register("primary", primary)
		f.Register("backup", backup)

		reply, err := f.GenerateReply(ctx, persona, "hi", nil)
		if err != nil {
			t.Fatalf("GenerateReply: %v", err)
		}
		if reply != "from backup" || primary.calls != 1 {
			t.Errorf("reply = %q, primary calls = %d", reply, primary.calls)
		}
	})

	t.Run("exhaustion reports ErrAllProvidersFailed", func(t *testing.T) {
		f := NewFailoverGenerator(&nop)
		f.Register("primary", &scriptedGenerator{err: errors.New("quota")})
		f.Register("backup", &scriptedGenerator{err: errors.New("down")})

		_, err := f.GenerateReply(ctx, persona, "hi", nil)
		if !errors.Is(err, domain.ErrAllProvidersFailed) {
			t.Fatalf("err = %v, want ErrAllProvidersFailed", err)
		}
	})

	t.Run("no providers registered still fails cleanly", func(t *testing.T) {
		f := NewFailoverGenerator(&nop)
		_, err := f.GenerateReply(ctx, persona, "hi", nil)
		if !errors.Is(err, domain.ErrAllProvidersFailed) {
			t.Fatalf("err = %v, want ErrAllProvidersFailed", err)
		}
	})
}

func TestPromptBuilder(t *testing.T) {
	persona := model.Persona{ID: "priya", Name: "Priya", Age: 22, Personality: "Friendly"}

	t.Run("known persona uses its scripted voice", func(t *testing.T) {
		b := NewPromptBuilder(512)
		prompt := b.Build(persona, "kaisi ho?", nil)
		if !strings.Contains(prompt, "Tum Priya ho") {
			t.Error("persona voice missing from prompt")
		}
		if !strings.Contains(prompt, "User: kaisi ho?") {
			t.Error("pending user message missing from prompt")
		}
	})

	t.Run("unknown persona gets a generic voice from catalog fields", func(t *testing.T) {
		b := NewPromptBuilder(512)
		prompt := b.Build(model.Persona{Name: "Tara", Age: 23, Personality: "Calm"}, "hi", nil)
		if !strings.Contains(prompt, "Tum Tara ho") {
			t.Error("generic voice not derived from persona fields")
		}
	})

	t.Run("history is trimmed oldest-first under a tight budget", func(t *testing.T) {
		b := NewPromptBuilder(16)
		history := []model.ChatMessage{
			model.NewUserMessage("this is the very oldest message in the log", model.MessageText),
			model.NewPersonaMessage("old reply"),
			model.NewUserMessage("newest", model.MessageText),
		}
		prompt := b.Build(persona, "hi", history)
		if strings.Contains(prompt, "very oldest") {
			t.Error("budget did not trim the oldest message")
		}
		if !strings.Contains(prompt, "User: newest") {
			t.Error("newest history line was trimmed before older ones")
		}
	})

	t.Run("image messages render as a photo marker", func(t *testing.T) {
		b := NewPromptBuilder(512)
		history := []model.ChatMessage{
			model.NewUserMessage("https://cdn.example.com/x.jpg", model.MessageImage),
		}
		prompt := b.Build(persona, "dekhi photo?", history)
		if strings.Contains(prompt, "cdn.example.com") {
			t.Error("raw media URL leaked into the prompt")
		}
		if !strings.Contains(prompt, "[photo bheji]") {
			t.Error("photo marker missing")
		}
	})

	t.Run("transcript keeps chronological order", func(t *testing.T) {
		b := NewPromptBuilder(512)
		history := []model.ChatMessage{
			model.NewPersonaMessage("pehla"),
			model.NewUserMessage("doosra", model.MessageText),
		}
		prompt := b.Build(persona, "hi", history)
		if strings.Index(prompt, "pehla") > strings.Index(prompt, "doosra") {
			t.Error("history lines out of order")
		}
	})
}
