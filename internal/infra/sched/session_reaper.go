// File: internal/infra/sched/session_reaper.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-companion-chat/internal/usecase"
)

// SessionReaper periodically evicts idle chat sessions from memory.
type SessionReaper struct {
	interval time.Duration
	sessions *usecase.SessionManager
	log      *zerolog.Logger
}

func NewSessionReaper(interval time.Duration, sessions *usecase.SessionManager, logger *zerolog.Logger) *SessionReaper {
	reapLog := logger.With().Str("component", "SessionReaper").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionReaper{
		interval: interval,
		sessions: sessions,
		log:      &reapLog,
	}
}

func (w *SessionReaper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting session reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			if n := w.sessions.ReapIdle(); n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions evicted")
			}
		}
	}
}
