package cmd

import (
	"fmt"
	"letterclash-backend/cmd/letterclash-cli/utils"
	"letterclash-backend/internal/scrapers/letterboxd"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var withPosters bool

func init() {
	filmsCmd.Flags().BoolVar(&withPosters, "posters", false, "Resolve the poster of every film, films without one are left out.")
	rootCmd.AddCommand(filmsCmd)
}

var filmsCmd = &cobra.Command{
	Use:   "films <username>",
	Short: "List every film on a user's letterboxd film grid.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			utils.Fatal(err)
		}
		scraper, err := newScraper(cfg)
		if err != nil {
			utils.Fatal(err)
		}

		films := scraper.ScrapeFilms(cmd.Context(), args[0])
		if withPosters {
			films = newResolver(cfg).Enrich(cmd.Context(), films)
		}

		if jsonOutput {
			if films == nil {
				films = []letterboxd.Film{}
			}
			err = utils.PrintJson(films)
			if err != nil {
				utils.Fatal(err)
			}
			return
		}

		t := utils.NewTable()
		header := table.Row{"#", "Title", "Rating"}
		if withPosters {
			header = append(header, "Poster")
		}
		t.AppendHeader(header)

		rated := 0
		for i, film := range films {
			row := table.Row{i + 1, film.Title, utils.Stars(film.Rating)}
			if withPosters && film.Poster != nil {
				row = append(row, *film.Poster)
			}
			if film.Rating != nil {
				rated++
			}
			t.AppendRow(row)
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d films", len(films)), fmt.Sprintf("%d rated", rated)})
		t.Render()
	},
}
