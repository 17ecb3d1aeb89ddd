package commands

import (
	"github.com/spf13/cobra"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/cli/ui"
	"github.com/comigor/emotune/internal/emotion"
)

var songsLimit int

var songsCmd = &cobra.Command{
	Use:   "songs <emotion>",
	Short: "list catalog songs tagged with an emotion",
	Example: `  $ emotune songs 슬픔
  $ emotune songs longing --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, known := emotion.Parse(args[0])
		if !known {
			ui.PrintWarning("%q is not one of the known emotions", args[0])
		}
		store := catalog.New(cfg.Catalog.Path)
		songs := store.Lookup(label)
		if len(songs) == 0 {
			ui.PrintWarning("추천할 노래를 찾지 못했습니다.")
			ui.PrintInfo("Catalog: %s", store.Path())
			return nil
		}
		limit := songsLimit
		if limit == 0 {
			limit = cfg.Catalog.DisplayLimit
		}
		ui.PrintBold("🎧 %s (%d)", label, len(songs))
		ui.PrintSongs(songs, limit)
		return nil
	},
}

func init() {
	songsCmd.Flags().IntVarP(&songsLimit, "limit", "n", 0, "number of songs to show, negative for all (default catalog.display_limit)")
}
