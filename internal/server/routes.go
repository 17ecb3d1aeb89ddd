package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/controller"
	"github.com/comigor/emotune/internal/conversation"
	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/logger"
)

// Routes wires the HTTP API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Post("/sessions", s.handleCreateSession)
		api.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Get("/", s.handleGetSession)
			sr.Delete("/", s.handleDeleteSession)
			sr.Post("/messages", s.handleSendMessage)
			sr.Post("/reset", s.handleReset)
			sr.Get("/recommendations", s.handleSessionRecommendations)
		})
		api.Get("/emotions", s.handleEmotions)
		api.Get("/songs", s.handleSongs)
		api.Get("/recommendations", s.handleRecommendations)
	})

	return r
}

type sessionView struct {
	ID       string                 `json:"id"`
	State    controller.State       `json:"state"`
	UserName string                 `json:"userName,omitempty"`
	Greeting string                 `json:"greeting,omitempty"`
	History  []conversation.Message `json:"history,omitempty"`
	Outcome  *outcomeView           `json:"outcome,omitempty"`
}

type outcomeView struct {
	Emotion    string          `json:"emotion"`
	Name       string          `json:"name,omitempty"`
	Known      bool            `json:"known"`
	Classified bool            `json:"classified"`
	Total      int             `json:"total"`
	Songs      []catalog.Entry `json:"songs"`
}

type messageView struct {
	State   controller.State     `json:"state"`
	Kind    controller.ReplyKind `json:"kind"`
	Reply   string               `json:"reply"`
	Outcome *outcomeView         `json:"outcome,omitempty"`
}

func (s *Server) outcome(o *controller.Outcome) *outcomeView {
	if o == nil {
		return nil
	}
	v := &outcomeView{
		Emotion:    string(o.Label),
		Classified: o.Classified,
		Known:      o.Label.Known(),
		Total:      len(o.Songs),
		Songs:      capSongs(o.Songs, s.displayLimit),
	}
	if v.Known {
		v.Name = o.Label.Name()
	}
	return v
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserName string `json:"userName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := s.create(strings.TrimSpace(payload.UserName))
	logger.L.Info("session created", "session_id", c.ID())
	respondJSON(w, http.StatusCreated, sessionView{
		ID:       c.ID(),
		State:    c.State(),
		UserName: c.UserName(),
		Greeting: c.Greeting(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, sessionView{
		ID:       c.ID(),
		State:    c.State(),
		UserName: c.UserName(),
		History:  c.History(),
		Outcome:  s.outcome(c.Outcome()),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.remove(chi.URLParam(r, "sessionID")) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, err := c.Submit(r.Context(), payload.Content)
	if err != nil {
		if errors.Is(err, controller.ErrSessionFinished) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		logger.L.Error("submit failed", "session_id", c.ID(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, messageView{
		State:   c.State(),
		Kind:    reply.Kind,
		Reply:   reply.Text,
		Outcome: s.outcome(reply.Outcome),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := s.get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := c.Reset(r.Context()); err != nil {
		logger.L.Error("reset failed", "session_id", c.ID(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to reset session")
		return
	}
	respondJSON(w, http.StatusOK, sessionView{ID: c.ID(), State: c.State(), Greeting: c.Greeting()})
}

func (s *Server) handleEmotions(w http.ResponseWriter, _ *http.Request) {
	type item struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	}
	out := make([]item, len(emotion.All))
	for i, l := range emotion.All {
		out[i] = item{Label: string(l), Name: l.Name()}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("emotion")
	if strings.TrimSpace(q) == "" {
		respondError(w, http.StatusBadRequest, "emotion query parameter is required")
		return
	}
	label, _ := emotion.Parse(q)
	songs := s.catalog.Lookup(label)
	respondJSON(w, http.StatusOK, capSongs(songs, queryInt(r, "limit", len(songs))))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "recommendation history disabled")
		return
	}
	respondJSON(w, http.StatusOK, s.history.Recent(r.Context(), queryInt(r, "limit", 20)))
}

// handleSessionRecommendations lists the records of one session, oldest
// first. Records outlive the session itself.
func (s *Server) handleSessionRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "recommendation history disabled")
		return
	}
	respondJSON(w, http.StatusOK, s.history.ListSession(r.Context(), chi.URLParam(r, "sessionID")))
}

func capSongs(songs []catalog.Entry, limit int) []catalog.Entry {
	if songs == nil {
		return []catalog.Entry{}
	}
	if limit >= 0 && len(songs) > limit {
		return songs[:limit]
	}
	return songs
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.L.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Warn("failed to encode response", "error", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
