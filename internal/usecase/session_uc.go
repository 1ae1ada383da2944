// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-companion-chat/internal/catalog"
	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/domain/ports/repository"
	"ai-companion-chat/internal/infra/logging"
	"ai-companion-chat/internal/infra/metrics"
)

// apologyText is appended in place of a reply when every provider fails. It
// stays in character; raw errors never reach the chat.
const apologyText = "Sorry yaar, abhi kuch technical problem aa rhi hai... thodi der baad try kro na 😅"

// imageAcks are the canned persona reactions to an image message. Image sends
// never call the response generator.
var imageAcks = []string{
	"omg ye pic to bahut achhi hai 😍 aur bhejo na!",
	"awww kitna cute 🥰 mujhe bahut pasand aayi",
	"nice pic! 😄 tumhari photography skills achhi hai",
	"wow 😍 isse dekh ke mera din ban gaya",
	"hayee 😘 ye to save kr rhi hun mai",
}

// SessionState tracks where a session is in its send/response cycle. All
// transitions are guarded centrally; there is no scattered busy flag.
type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateSending       SessionState = "sending"
	StateAwaitingReply SessionState = "awaiting_reply"
	StatePersisting    SessionState = "persisting"
)

// Session is the live chat state for one (user, persona) pair. It exists for
// the lifetime of the chat view and is discarded, never deleted remotely, on
// release.
type Session struct {
	mu       sync.Mutex
	state    SessionState
	typing   bool
	user     model.User
	persona  model.Persona
	messages []model.ChatMessage
	lastSeen time.Time
}

// begin moves Idle -> Sending. Any other starting state means a cycle is
// already in flight and the caller's send is dropped, not queued.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return domain.ErrSendInFlight
	}
	s.state = StateSending
	s.lastSeen = time.Now()
	return nil
}

func (s *Session) transition(next SessionState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// finish returns the session to Idle and clears the typing indicator
// regardless of how the cycle ended.
func (s *Session) finish() {
	s.mu.Lock()
	s.state = StateIdle
	s.typing = false
	s.mu.Unlock()
}

func (s *Session) append(m model.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

func (s *Session) reset(log []model.ChatMessage) {
	s.mu.Lock()
	s.messages = log
	s.mu.Unlock()
}

func (s *Session) setTyping(v bool) {
	s.mu.Lock()
	s.typing = v
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Snapshot returns a copy of the message sequence, always in creation order.
func (s *Session) Snapshot() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

func (s *Session) Persona() model.Persona { return s.persona }
func (s *Session) User() model.User       { return s.user }

// ChatConfig tunes session pacing and history handling.
type ChatConfig struct {
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
	HistoryWindow  int
	SessionIdleTTL time.Duration
}

// SessionManager mediates between the remote chat store, the response
// generator and the HTTP layer for every active (user, persona) pair.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog *catalog.Catalog
	history repository.ChatHistoryRepository
	gen     adapter.ResponseGenerator
	cfg     ChatConfig
	log     *zerolog.Logger
}

func NewSessionManager(
	cat *catalog.Catalog,
	history repository.ChatHistoryRepository,
	gen adapter.ResponseGenerator,
	cfg ChatConfig,
	logger *zerolog.Logger,
) *SessionManager {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = 30 * time.Minute
	}
	l := logger.With().Str("component", "SessionManager").Logger()
	return &SessionManager{
		sessions: make(map[string]*Session),
		catalog:  cat,
		history:  history,
		gen:      gen,
		cfg:      cfg,
		log:      &l,
	}
}

func sessionKey(username, personaID string) string {
	return username + "|" + personaID
}

// Activate opens (or returns) the session for the given user and persona.
// Unknown personas fail with ErrNotFound before any store traffic. Guests and
// failed or empty history fetches all start from the scripted welcome; a
// fetch failure is logged, never surfaced.
func (m *SessionManager) Activate(ctx context.Context, user model.User, personaID string) (*Session, error) {
	p, ok := m.catalog.FindByID(personaID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	ctx = logging.WithUsername(ctx, user.Username)
	ctx = logging.WithPersonaID(ctx, personaID)

	key := sessionKey(user.Username, personaID)
	m.mu.RLock()
	s := m.sessions[key]
	m.mu.RUnlock()
	if s != nil {
		s.touch()
		return s, nil
	}

	s = &Session{
		state:    StateIdle,
		user:     user,
		persona:  p,
		messages: m.bootstrap(ctx, user, p),
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	if existing := m.sessions[key]; existing != nil {
		m.mu.Unlock()
		existing.touch()
		return existing, nil
	}
	m.sessions[key] = s
	m.mu.Unlock()

	metrics.SessionOpened()
	return s, nil
}

func (m *SessionManager) bootstrap(ctx context.Context, user model.User, p model.Persona) []model.ChatMessage {
	welcome := func() []model.ChatMessage {
		return []model.ChatMessage{model.NewPersonaMessage(m.catalog.WelcomeFor(p.Name))}
	}
	if user.IsGuest() {
		return welcome()
	}
	stored, err := m.history.Get(ctx, user.Username, p.ID)
	if err != nil {
		logging.With(ctx, m.log).Warn().Err(err).Msg("history fetch failed, starting fresh chat")
		return welcome()
	}
	if len(stored) == 0 {
		return welcome()
	}
	// Adopt the stored history verbatim: no reordering, no dedup.
	return stored
}

// Send runs one full send/response cycle: optimistic user append, typing
// pause, generator call (or the scripted apology on exhaustion), and a
// last-write-wins save for named users. The cycle is single-flight per
// session; a concurrent call is rejected with ErrSendInFlight.
func (m *SessionManager) Send(ctx context.Context, user model.User, personaID, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, domain.ErrInvalidArgument
	}

	ctx = logging.WithUsername(ctx, user.Username)
	ctx = logging.WithPersonaID(ctx, personaID)
	log := logging.With(ctx, m.log)
	defer logging.TraceDuration(log, "SessionManager.Send")()

	s, err := m.Activate(ctx, user, personaID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	if err := s.begin(); err != nil {
		return model.ChatMessage{}, err
	}
	defer s.finish()

	recent := model.RecentWindow(s.Snapshot(), m.cfg.HistoryWindow)
	s.append(model.NewUserMessage(text, model.MessageText))
	s.setTyping(true)

	m.typingPause()

	s.transition(StateAwaitingReply)
	body, err := m.gen.GenerateReply(ctx, s.persona, text, recent)
	if err != nil {
		log.Warn().Err(err).Msg("reply generation exhausted, serving apology")
		metrics.ApologyServed(s.persona.ID)
		body = apologyText
	}
	reply := model.NewPersonaMessage(strings.TrimSpace(body))
	s.append(reply)

	m.persist(ctx, s)
	return reply, nil
}

// SendImage mirrors Send but the persona reply is a canned acknowledgement
// chosen pseudorandomly; the generator is never consulted.
func (m *SessionManager) SendImage(ctx context.Context, user model.User, personaID, mediaURL string) (model.ChatMessage, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return model.ChatMessage{}, domain.ErrInvalidArgument
	}

	ctx = logging.WithUsername(ctx, user.Username)
	ctx = logging.WithPersonaID(ctx, personaID)
	defer logging.TraceDuration(logging.With(ctx, m.log), "SessionManager.SendImage")()

	s, err := m.Activate(ctx, user, personaID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	if err := s.begin(); err != nil {
		return model.ChatMessage{}, err
	}
	defer s.finish()

	s.append(model.NewUserMessage(mediaURL, model.MessageImage))
	s.setTyping(true)

	m.typingPause()

	s.transition(StateAwaitingReply)
	reply := model.NewPersonaMessage(imageAcks[rand.Intn(len(imageAcks))])
	s.append(reply)

	m.persist(ctx, s)
	return reply, nil
}

// Clear re-seeds the in-memory log with the scripted welcome. The remote
// record is left untouched, so a named user's next visit resurrects the old
// history unless a send saves over it first.
func (m *SessionManager) Clear(ctx context.Context, user model.User, personaID string) error {
	s, err := m.Activate(ctx, user, personaID)
	if err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	s.reset([]model.ChatMessage{model.NewPersonaMessage(m.catalog.WelcomeFor(s.persona.Name))})
	return nil
}

// Release drops the session from memory. The remote record, if any, outlives
// it and is fetched fresh on the next Activate.
func (m *SessionManager) Release(user model.User, personaID string) {
	key := sessionKey(user.Username, personaID)
	m.mu.Lock()
	if _, ok := m.sessions[key]; ok {
		delete(m.sessions, key)
		metrics.SessionClosed()
	}
	m.mu.Unlock()
}

// ReapIdle evicts sessions idle for longer than the configured TTL and
// returns how many were dropped.
func (m *SessionManager) ReapIdle() int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, s := range m.sessions {
		if s.idleFor(now) > m.cfg.SessionIdleTTL {
			delete(m.sessions, key)
			n++
		}
	}
	metrics.SessionsReaped(n)
	return n
}

// typingPause emulates human response latency with a uniform draw from the
// configured range. Purely a UX pacing device.
func (m *SessionManager) typingPause() {
	lo, hi := m.cfg.TypingDelayMin, m.cfg.TypingDelayMax
	if hi <= lo {
		if lo > 0 {
			time.Sleep(lo)
		}
		return
	}
	time.Sleep(lo + time.Duration(rand.Int63n(int64(hi-lo))))
}

// persist writes the full log for named users as a single upsert. Failures
// are logged and swallowed; a failed save is silent data loss by product
// choice (never break immersion with a technical error).
func (m *SessionManager) persist(ctx context.Context, s *Session) {
	if s.user.IsGuest() {
		return
	}
	s.transition(StatePersisting)
	if err := m.history.Save(ctx, s.user.Username, s.persona.ID, s.Snapshot()); err != nil {
		metrics.HistorySaveFailed()
		logging.With(ctx, m.log).Error().Err(err).Msg("history save failed, chat state not persisted")
	}
}
