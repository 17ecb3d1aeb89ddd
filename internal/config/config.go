package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no completion service credential is configured.
var ErrMissingAPIKey = errors.New("llm api key is not configured (set OPENAI_API_KEY)")

// DefaultPersona seeds every conversation.
const DefaultPersona = "너는 사용자의 이야기를 경청하고 공감해주는 따뜻한 대화 친구야. " +
	"사용자가 어떤 이야기를 하든 친절하고 자연스럽게 대화를 이어가줘. " +
	"대화가 충분히 진행되었거나 사용자가 추천을 원할 때까지는 계속 대화해."

// DefaultTriggerKeywords end free conversation and start the analysis.
var DefaultTriggerKeywords = []string{"추천", "그만", "종료", "노래", "music"}

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	Catalog CatalogConfig
	Session SessionConfig
	History HistoryConfig
	Log     LogConfig
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// CatalogConfig points at the song dataset.
type CatalogConfig struct {
	Path         string `mapstructure:"path"`
	DisplayLimit int    `mapstructure:"display_limit"`
}

// SessionConfig controls the conversation persona and when it ends.
type SessionConfig struct {
	Persona         string   `mapstructure:"persona"`
	TriggerKeywords []string `mapstructure:"trigger_keywords"`
}

// HistoryConfig controls the recommendation log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LogConfig controls internal/logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the working directory, or the file named by
// CONFIG_PATH, and applies environment overrides. A missing config.yaml is
// not an error; an explicit CONFIG_PATH that cannot be read is.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("emotune")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindings := map[string]string{
		"llm.api_key":     "OPENAI_API_KEY",
		"llm.base_url":    "OPENAI_BASE_URL",
		"llm.model":       "OPENAI_MODEL",
		"catalog.path":    "CATALOG_PATH",
		"history.db_path": "HISTORY_DB_PATH",
		"log.level":       "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "EMOTUNE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(config.Session.TriggerKeywords) == 0 {
		config.Session.TriggerKeywords = append([]string(nil), DefaultTriggerKeywords...)
	}
	if config.Catalog.DisplayLimit <= 0 {
		config.Catalog.DisplayLimit = 6
	}

	return &config, nil
}

// RequireLLM reports a ConfigError when the completion service cannot be used.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("catalog.path", "data/Final_lyrics_emotion_analysis.csv")
	v.SetDefault("catalog.display_limit", 6)
	v.SetDefault("session.persona", DefaultPersona)
	v.SetDefault("session.trigger_keywords", DefaultTriggerKeywords)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", "history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
