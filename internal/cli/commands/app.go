package commands

import (
	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/config"
	"github.com/comigor/emotune/internal/controller"
	"github.com/comigor/emotune/internal/conversation"
	"github.com/comigor/emotune/internal/history"
	"github.com/comigor/emotune/internal/llm"
)

// app holds what every session shares: the completion client, the catalog and
// the history store.
type app struct {
	cfg     *config.Config
	client  llm.Client
	catalog *catalog.Store
	history *history.Store
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		client:  llm.NewClient(cfg.LLM),
		catalog: catalog.New(cfg.Catalog.Path),
	}
	if cfg.History.Enabled {
		a.history = history.New(cfg.History.DBPath)
	}
	return a, nil
}

func (a *app) newController(userName string) *controller.Controller {
	opts := controller.Options{
		UserName: userName,
		Triggers: a.cfg.Session.TriggerKeywords,
	}
	if a.history != nil {
		opts.Recorder = a.history
	}
	return controller.New(func() controller.Conversation {
		return conversation.New(a.client, a.cfg.LLM.Model, a.cfg.Session.Persona)
	}, a.catalog, opts)
}

func (a *app) close() {
	if a.history != nil {
		a.history.Close()
	}
}
