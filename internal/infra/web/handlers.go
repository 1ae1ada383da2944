// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ai-companion-chat/internal/domain"
	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/infra/logging"
	"ai-companion-chat/internal/usecase"
)

const maxUploadBytes = 10 << 20

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrSendInFlight):
		respondError(w, http.StatusConflict, "a message is already being sent")
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// identify resolves the acting user. An empty username mints a fresh guest;
// the response payloads echo the identity back so clients can keep it.
func identify(username string) model.User {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.NewGuestUser()
	}
	if strings.HasPrefix(username, "guest_") {
		return model.User{Username: username, Guest: true}
	}
	return model.NewNamedUser(username)
}

type chatPayload struct {
	Username string               `json:"username"`
	Persona  model.Persona        `json:"persona"`
	Messages []model.ChatMessage  `json:"messages"`
	Typing   bool                 `json:"typing"`
	State    usecase.SessionState `json:"state"`
}

func chatResponse(s *usecase.Session) chatPayload {
	return chatPayload{
		Username: s.User().Username,
		Persona:  s.Persona(),
		Messages: s.Snapshot(),
		Typing:   s.Typing(),
		State:    s.State(),
	}
}

func (s *Server) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"personas": s.catalog.List()})
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := s.catalog.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		respondError(w, http.StatusNotFound, "persona not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleClaimAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.HasPrefix(username, "guest_") {
		respondError(w, http.StatusBadRequest, "username is required and may not start with guest_")
		return
	}
	if s.accounts == nil {
		respondError(w, http.StatusServiceUnavailable, "accounts unavailable")
		return
	}
	if err := s.accounts.Create(r.Context(), username); err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"username": username})
}

func (s *Server) handleCheckAccount(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		respondError(w, http.StatusServiceUnavailable, "accounts unavailable")
		return
	}
	username := chi.URLParam(r, "username")
	ok, err := s.accounts.Exists(r.Context(), username)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": username})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	user := identify(r.URL.Query().Get("username"))
	sess, err := s.sessions.Activate(r.Context(), user, chi.URLParam(r, "personaID"))
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse(sess))
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	user := identify(r.URL.Query().Get("username"))
	if err := s.sessions.Clear(r.Context(), user, chi.URLParam(r, "personaID")); err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	sess, err := s.sessions.Activate(r.Context(), user, chi.URLParam(r, "personaID"))
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse(sess))
}

func (s *Server) handleReleaseChat(w http.ResponseWriter, r *http.Request) {
	user := identify(r.URL.Query().Get("username"))
	s.sessions.Release(user, chi.URLParam(r, "personaID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	user := identify(req.Username)
	reply, err := s.sessions.Send(r.Context(), user, chi.URLParam(r, "personaID"), req.Text)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"username": user.Username,
		"reply":    reply,
	})
}

func (s *Server) handleSendImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	user := identify(req.Username)
	reply, err := s.sessions.SendImage(r.Context(), user, chi.URLParam(r, "personaID"), req.URL)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"username": user.Username,
		"reply":    reply,
	})
}

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		respondError(w, http.StatusServiceUnavailable, "media uploads unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	kind := adapter.MediaImage
	if r.FormValue("kind") == string(adapter.MediaVideo) {
		kind = adapter.MediaVideo
	}
	user := identify(r.FormValue("username"))

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.media.Upload(r.Context(), user.Username, header.Filename, contentType, kind, data)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("media upload failed")
		respondError(w, http.StatusBadGateway, "upload failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
		"url":      url,
	})
}
