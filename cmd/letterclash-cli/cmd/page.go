package cmd

import (
	"fmt"
	"letterclash-backend/cmd/letterclash-cli/utils"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/scrapers/letterboxd"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rawPage bool

func init() {
	pageCmd.Flags().BoolVar(&rawPage, "raw", false, "Print the html of the page instead of what was extracted from it.")
	rootCmd.AddCommand(pageCmd)
}

var pageCmd = &cobra.Command{
	Use:   "page <username> [page]",
	Short: "Fetch a single page of a user's film grid, useful when the markup changes.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		page := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				utils.Fatal(fmt.Errorf("invalid page number: %s", args[1]))
			}
			page = n
		}

		cfg, err := readConfig()
		if err != nil {
			utils.Fatal(err)
		}
		scraper, err := newScraper(cfg)
		if err != nil {
			utils.Fatal(err)
		}

		html, err := scraper.FetchPage(cmd.Context(), args[0], page)
		if err != nil {
			utils.Fatal(err)
		}
		if rawPage {
			fmt.Println(html)
			return
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			utils.Fatal(err)
		}
		films := letterboxd.FilmsFromDocument(doc, telemetry.SlogAPI{})

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "Title", "Rating"})
		for i, film := range films {
			t.AppendRow(table.Row{i + 1, film.Title, utils.Stars(film.Rating)})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("page %d", page), fmt.Sprintf("next page: %v", letterboxd.HasNextPage(doc))})
		t.Render()
	},
}
