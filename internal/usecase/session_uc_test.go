// File: internal/usecase/session_uc_test.go
package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ai-companion-chat/internal/catalog"
	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/infra/logging"
)

var errBoom = errors.New("boom")

func testManager(t *testing.T, repo *memHistoryRepo, gen *fakeGenerator) *SessionManager {
	t.Helper()
	nop := zerolog.Nop()
	return NewSessionManager(catalog.New(), repo, gen, ChatConfig{
		HistoryWindow:  10,
		SessionIdleTTL: 30 * time.Minute,
	}, &nop)
}

func TestActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("guest starts from welcome without store traffic", func(t *testing.T) {
		repo := newMemHistoryRepo()
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})

		s, err := m.Activate(ctx, model.NewGuestUser(), "kavya")
		if err != nil {
			t.Fatalf("Activate: %v", err)
		}
		log := s.Snapshot()
		if len(log) != 1 {
			t.Fatalf("expected single welcome message, got %d", len(log))
		}
		if log[0].Sender != model.SenderPersona {
			t.Errorf("welcome sender = %q, want persona", log[0].Sender)
		}
		if gets, _ := repo.calls(); gets != 0 {
			t.Errorf("guest activation hit the store %d times", gets)
		}
	})

	t.Run("named user adopts stored history verbatim", func(t *testing.T) {
		repo := newMemHistoryRepo()
		stored := []model.ChatMessage{
			model.NewPersonaMessage("wapas aa gaye! 😊"),
			model.NewUserMessage("haan yaar", model.MessageText),
		}
		repo.logs["rahul/priya"] = stored
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})

		s, err := m.Activate(ctx, model.NewNamedUser("rahul"), "priya")
		if err != nil {
			t.Fatalf("Activate: %v", err)
		}
		log := s.Snapshot()
		if len(log) != 2 {
			t.Fatalf("expected 2 stored messages, got %d", len(log))
		}
		for i := range stored {
			if log[i].ID != stored[i].ID || log[i].Body != stored[i].Body {
				t.Errorf("message %d rewritten on adoption: %+v", i, log[i])
			}
		}
	})

	t.Run("fetch failure degrades to welcome", func(t *testing.T) {
		repo := newMemHistoryRepo()
		repo.failGet = true
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})

		s, err := m.Activate(ctx, model.NewNamedUser("rahul"), "priya")
		if err != nil {
			t.Fatalf("fetch failure must not surface, got %v", err)
		}
		if log := s.Snapshot(); len(log) != 1 || log[0].Sender != model.SenderPersona {
			t.Errorf("expected fresh welcome chat, got %d messages", len(log))
		}
	})

	t.Run("unknown persona fails before any store call", func(t *testing.T) {
		repo := newMemHistoryRepo()
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})

		if _, err := m.Activate(ctx, model.NewNamedUser("rahul"), "nobody"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if gets, _ := repo.calls(); gets != 0 {
			t.Errorf("store was called %d times for unknown persona", gets)
		}
	})

	t.Run("activation is idempotent per user and persona", func(t *testing.T) {
		repo := newMemHistoryRepo()
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})
		user := model.NewNamedUser("rahul")

		s1, _ := m.Activate(ctx, user, "priya")
		s2, _ := m.Activate(ctx, user, "priya")
		if s1 != s2 {
			t.Error("second activation created a new session")
		}
		if gets, _ := repo.calls(); gets != 1 {
			t.Errorf("history fetched %d times, want 1", gets)
		}
	})
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip appends user message and reply then saves", func(t *testing.T) {
		repo := newMemHistoryRepo()
		gen := &fakeGenerator{reply: "arey kya baat hai! 😄"}
		m := testManager(t, repo, gen)
		user := model.NewNamedUser("rahul")

		reply, err := m.Send(ctx, user, "priya", "  kaisi ho?  ")
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if reply.Body != "arey kya baat hai! 😄" || reply.Sender != model.SenderPersona {
			t.Errorf("unexpected reply: %+v", reply)
		}

		s, _ := m.Activate(ctx, user, "priya")
		log := s.Snapshot()
		if len(log) != 3 {
			t.Fatalf("log length = %d, want welcome + user + reply", len(log))
		}
		if log[1].Sender != model.SenderUser || log[1].Body != "kaisi ho?" {
			t.Errorf("user message not trimmed/appended: %+v", log[1])
		}
		stored := repo.stored("rahul", "priya")
		if len(stored) != len(log) {
			t.Fatalf("persisted %d messages, session holds %d", len(stored), len(log))
		}
		for i := range log {
			if stored[i].ID != log[i].ID {
				t.Errorf("persisted message %d diverges from session", i)
			}
		}
		if s.State() != StateIdle || s.Typing() {
			t.Error("session not returned to idle after send")
		}
	})

	t.Run("guest sends are never persisted", func(t *testing.T) {
		repo := newMemHistoryRepo()
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})

		if _, err := m.Send(ctx, model.NewGuestUser(), "priya", "hello"); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if _, saves := repo.calls(); saves != 0 {
			t.Errorf("guest send persisted %d times", saves)
		}
	})

	t.Run("blank text is rejected without side effects", func(t *testing.T) {
		repo := newMemHistoryRepo()
		gen := &fakeGenerator{reply: "hi"}
		m := testManager(t, repo, gen)

		if _, err := m.Send(ctx, model.NewNamedUser("rahul"), "priya", "   \n\t "); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
		if gen.callCount() != 0 {
			t.Error("generator called for blank text")
		}
		if _, saves := repo.calls(); saves != 0 {
			t.Error("blank text triggered a save")
		}
	})

	t.Run("provider exhaustion serves the apology in character", func(t *testing.T) {
		repo := newMemHistoryRepo()
		m := testManager(t, repo, &fakeGenerator{fail: true})
		user := model.NewNamedUser("rahul")

		reply, err := m.Send(ctx, user, "priya", "hello")
		if err != nil {
			t.Fatalf("exhaustion must not surface as an error, got %v", err)
		}
		if reply.Body != apologyText {
			t.Errorf("reply = %q, want the scripted apology", reply.Body)
		}
		s, _ := m.Activate(ctx, user, "priya")
		log := s.Snapshot()
		if log[len(log)-1].Body != apologyText {
			t.Error("apology missing from the log")
		}
	})

	t.Run("save failure is swallowed and the reply still lands", func(t *testing.T) {
		repo := newMemHistoryRepo()
		repo.failSave = true
		m := testManager(t, repo, &fakeGenerator{reply: "hi"})
		user := model.NewNamedUser("rahul")

		reply, err := m.Send(ctx, user, "priya", "hello")
		if err != nil {
			t.Fatalf("save failure must not surface, got %v", err)
		}
		if reply.Body != "hi" {
			t.Errorf("reply = %q", reply.Body)
		}
		s, _ := m.Activate(ctx, user, "priya")
		if len(s.Snapshot()) != 3 {
			t.Error("session log lost messages on save failure")
		}
	})

	t.Run("second send during a cycle is dropped", func(t *testing.T) {
		repo := newMemHistoryRepo()
		gen := &fakeGenerator{reply: "hi", release: make(chan struct{})}
		m := testManager(t, repo, gen)
		user := model.NewNamedUser("rahul")

		if _, err := m.Activate(ctx, user, "priya"); err != nil {
			t.Fatalf("Activate: %v", err)
		}

		done := make(chan model.ChatMessage, 1)
		go func() {
			reply, _ := m.Send(ctx, user, "priya", "first")
			done <- reply
		}()

		// Wait until the first cycle is inside the generator.
		deadline := time.After(2 * time.Second)
		for gen.callCount() == 0 {
			select {
			case <-deadline:
				t.Fatal("first send never reached the generator")
			default:
				time.Sleep(time.Millisecond)
			}
		}

		if _, err := m.Send(ctx, user, "priya", "second"); !errors.Is(err, domain.ErrSendInFlight) {
			t.Fatalf("concurrent send err = %v, want ErrSendInFlight", err)
		}

		close(gen.release)
		<-done

		if gen.callCount() != 1 {
			t.Errorf("generator called %d times, want 1", gen.callCount())
		}
		s, _ := m.Activate(ctx, user, "priya")
		for _, msg := range s.Snapshot() {
			if msg.Body == "second" {
				t.Error("rejected send leaked into the log")
			}
		}
	})
}

func TestSendLogContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	repo := newMemHistoryRepo()
	repo.failSave = true
	m := NewSessionManager(catalog.New(), repo, &fakeGenerator{reply: "hi"}, ChatConfig{
		HistoryWindow:  10,
		SessionIdleTTL: 30 * time.Minute,
	}, &logger)

	ctx := logging.WithTraceID(context.Background(), "trace-123")
	if _, err := m.Send(ctx, model.NewNamedUser("rahul"), "priya", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"trace_id":"trace-123"`,
		`"username":"rahul"`,
		`"persona_id":"priya"`,
		"SessionManager.Send",
		"history save failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSendImage(t *testing.T) {
	ctx := context.Background()
	repo := newMemHistoryRepo()
	gen := &fakeGenerator{reply: "hi"}
	m := testManager(t, repo, gen)
	user := model.NewNamedUser("rahul")

	reply, err := m.SendImage(ctx, user, "priya", "https://cdn.example.com/p.jpg")
	if err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	found := false
	for _, ack := range imageAcks {
		if reply.Body == ack {
			found = true
		}
	}
	if !found {
		t.Errorf("reply %q is not a known image acknowledgement", reply.Body)
	}
	if gen.callCount() != 0 {
		t.Error("image send consulted the generator")
	}

	s, _ := m.Activate(ctx, user, "priya")
	log := s.Snapshot()
	img := log[len(log)-2]
	if img.Type != model.MessageImage || img.Body != "https://cdn.example.com/p.jpg" {
		t.Errorf("image message malformed: %+v", img)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := newMemHistoryRepo()
	m := testManager(t, repo, &fakeGenerator{reply: "hi"})
	user := model.NewNamedUser("rahul")

	if _, err := m.Send(ctx, user, "priya", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := m.Clear(ctx, user, "priya"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	s, _ := m.Activate(ctx, user, "priya")
	log := s.Snapshot()
	if len(log) != 1 || log[0].Sender != model.SenderPersona {
		t.Fatalf("expected single welcome after clear, got %d messages", len(log))
	}
	// Clear is local only; the stored record still holds the old chat.
	if stored := repo.stored("rahul", "priya"); len(stored) != 3 {
		t.Errorf("stored record touched by clear: %d messages", len(stored))
	}
}

func TestReapIdle(t *testing.T) {
	ctx := context.Background()
	repo := newMemHistoryRepo()
	nop := zerolog.Nop()
	m := NewSessionManager(catalog.New(), repo, &fakeGenerator{reply: "hi"}, ChatConfig{
		HistoryWindow:  10,
		SessionIdleTTL: 10 * time.Millisecond,
	}, &nop)

	s, err := m.Activate(ctx, model.NewNamedUser("rahul"), "priya")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if n := m.ReapIdle(); n != 0 {
		t.Fatalf("fresh session reaped: %d", n)
	}

	s.mu.Lock()
	s.lastSeen = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	if n := m.ReapIdle(); n != 1 {
		t.Fatalf("reaped %d sessions, want 1", n)
	}
	s2, _ := m.Activate(ctx, model.NewNamedUser("rahul"), "priya")
	if s2 == s {
		t.Error("reaped session was resurrected instead of rebuilt")
	}
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	repo := newMemHistoryRepo()
	m := testManager(t, repo, &fakeGenerator{reply: "hi"})
	user := model.NewNamedUser("rahul")

	s1, _ := m.Activate(ctx, user, "priya")
	m.Release(user, "priya")
	s2, _ := m.Activate(ctx, user, "priya")
	if s1 == s2 {
		t.Error("release did not drop the session")
	}
	if gets, _ := repo.calls(); gets != 2 {
		t.Errorf("history fetched %d times, want refetch after release", gets)
	}
}
