package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/comigor/emotune/internal/cli/ui"
	"github.com/comigor/emotune/internal/config"
	"github.com/comigor/emotune/internal/logger"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
)

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "emotune",
	Short:   "Chat, detect the mood, get songs that match it",
	Version: version,
	Long: `emotune chats with you through an OpenAI-compatible model, works out how you
feel from the conversation and recommends songs tagged with that emotion.`,
	Example: `  # Chat in the terminal (say '추천' or '그만' to get songs)
  $ emotune chat

  # Serve the HTTP API
  $ emotune serve

  # Expose the song catalog as MCP tools over stdio
  $ emotune mcp

  # Look songs up directly
  $ emotune songs sadness`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute executes the root command; SIGINT/SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(songsCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.L.Warn("failed to load .env file", "error", err)
	}
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return err
		}
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg = loaded

	logger.Init(os.Stderr, cfg.Log.Format)
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger.SetLevel(level)
	return nil
}
