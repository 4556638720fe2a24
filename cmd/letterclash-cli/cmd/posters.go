package cmd

import (
	"letterclash-backend/cmd/letterclash-cli/utils"
	"letterclash-backend/internal/posters"
	"letterclash-backend/internal/scrapers/tmdb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(postersCmd)
}

var postersCmd = &cobra.Command{
	Use:   "posters <title>...",
	Short: "Resolve the tmdb poster of one or more film titles.",
	Long:  "Resolve the tmdb poster of one or more film titles, a trailing release year like \"Dune (2021)\" is ignored when searching.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			utils.Fatal(err)
		}
		if cfg.TmdbApiKey == "" {
			utils.Fatal(tmdb.ErrMissingApiKey)
		}

		found := newResolver(cfg).ResolveMany(cmd.Context(), args)

		if jsonOutput {
			err = utils.PrintJson(found)
			if err != nil {
				utils.Fatal(err)
			}
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Title", "Query", "Poster"})
		for _, title := range args {
			poster, ok := found[title]
			if !ok {
				poster = "-"
			}
			t.AppendRow(table.Row{title, posters.NormalizeTitle(title), poster})
		}
		t.Render()
	},
}
