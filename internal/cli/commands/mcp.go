package commands

import (
	"github.com/spf13/cobra"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/mcpserver"
	"github.com/comigor/emotune/pkg/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "expose the song catalog as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout offering 'list_emotions' and
'recommend_songs'. No completion service credential is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mcpserver.ServeStdio(mcpserver.New("emotune", version, catalogTools()))
	},
}

func catalogTools() *tools.ToolManager {
	m := tools.NewToolManager()
	m.RegisterTool(&tools.ListEmotionsTool{})
	m.RegisterTool(tools.NewRecommendSongsTool(catalog.New(cfg.Catalog.Path), cfg.Catalog.DisplayLimit))
	return m
}
