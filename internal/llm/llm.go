package llm

import (
	"strings"

	"github.com/comigor/emotune/internal/config"
	"github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI-compatible client. Provider "azure" switches to
// the Azure deployment URL scheme; anything else is treated as OpenAI.
func NewClient(cfg config.LLMConfig) *openai.Client {
	var clientCfg openai.ClientConfig
	switch strings.ToLower(cfg.Provider) {
	case "azure":
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	}

	return openai.NewClientWithConfig(clientCfg)
}
