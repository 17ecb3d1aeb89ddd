// Package server serves the chat-to-recommendation pipeline over HTTP. Every
// session owns its own controller; only the catalog and the history store
// are shared.
package server

import (
	"context"
	"sync"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/controller"
	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/history"
)

// ControllerFactory creates the controller of a new session.
type ControllerFactory func(userName string) *controller.Controller

// Catalog looks songs up by emotion.
type Catalog interface {
	Lookup(label emotion.Label) []catalog.Entry
}

// HistoryReader lists recorded recommendations.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) []history.Record
	ListSession(ctx context.Context, sessionID string) []history.Record
}

// Server holds live sessions.
type Server struct {
	newController ControllerFactory
	catalog       Catalog
	history       HistoryReader
	displayLimit  int

	mu       sync.RWMutex
	sessions map[string]*controller.Controller
}

// New creates a Server. history may be nil when recording is disabled.
func New(newController ControllerFactory, cat Catalog, hist HistoryReader, displayLimit int) *Server {
	if displayLimit <= 0 {
		displayLimit = 6
	}
	return &Server{
		newController: newController,
		catalog:       cat,
		history:       hist,
		displayLimit:  displayLimit,
		sessions:      make(map[string]*controller.Controller),
	}
}

func (s *Server) create(userName string) *controller.Controller {
	c := s.newController(userName)
	s.mu.Lock()
	s.sessions[c.ID()] = c
	s.mu.Unlock()
	return c
}

func (s *Server) get(id string) (*controller.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	return c, ok
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len reports the number of live sessions.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
