package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/comigor/emotune/internal/cli/ui"
	"github.com/comigor/emotune/internal/logger"
	"github.com/comigor/emotune/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the chat API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	var hist server.HistoryReader
	if a.history != nil {
		hist = a.history
	}
	srv := server.New(a.newController, a.catalog, hist, a.cfg.Catalog.DisplayLimit)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ui.PrintInfo("Catalog: %s", a.catalog.Path())
	ui.PrintSuccess("Listening on http://%s", httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("starting server", "address", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	ctx := cmd.Context()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.L.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
