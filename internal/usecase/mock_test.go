// File: internal/usecase/mock_test.go
package usecase

import (
	"context"
	"sync"

	"ai-companion-chat/internal/domain/model"
)

// memHistoryRepo is an in-memory ChatHistoryRepository with failure toggles
// and call counters.
type memHistoryRepo struct {
	mu        sync.Mutex
	logs      map[string][]model.ChatMessage
	getCalls  int
	saveCalls int
	failGet   bool
	failSave  bool
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{logs: make(map[string][]model.ChatMessage)}
}

func (r *memHistoryRepo) key(username, personaID string) string {
	return username + "/" + personaID
}

func (r *memHistoryRepo) Get(_ context.Context, username, personaID string) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.failGet {
		return nil, errBoom
	}
	stored := r.logs[r.key(username, personaID)]
	out := make([]model.ChatMessage, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *memHistoryRepo) Save(_ context.Context, username, personaID string, log []model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.failSave {
		return errBoom
	}
	cp := make([]model.ChatMessage, len(log))
	copy(cp, log)
	r.logs[r.key(username, personaID)] = cp
	return nil
}

func (r *memHistoryRepo) calls() (gets, saves int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCalls, r.saveCalls
}

func (r *memHistoryRepo) stored(username, personaID string) []model.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs[r.key(username, personaID)]
}

// fakeGenerator returns a fixed reply, or fails, counting invocations. An
// optional release channel blocks GenerateReply until closed.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	fail    bool
	calls   int
	release chan struct{}
}

func (g *fakeGenerator) GenerateReply(_ context.Context, _ model.Persona, _ string, _ []model.ChatMessage) (string, error) {
	g.mu.Lock()
	g.calls++
	release := g.release
	g.mu.Unlock()
	if release != nil {
		<-release
	}
	if g.fail {
		return "", errBoom
	}
	return g.reply, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
