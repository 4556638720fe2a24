package letterboxd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_scraper_scrape_films = "scraper.scrape-films"
)

var tracer = otel.Tracer("letterclash/letterboxd")

// ScrapeFilms reads every page of a user's film grid in order.
//
// Pagination stops at the first page without a next page link, at the first
// page that cannot be fetched or parsed, when ctx is done or after MaxPages.
// Failures are reported and never returned, the films read so far are.
func (c *Client) ScrapeFilms(ctx context.Context, username string) []Film {
	ctx, span := tracer.Start(ctx, "client:ScrapeFilms")
	defer span.End()

	var films []Film
	page := 1
	for ; page <= c.MaxPages; page++ {
		if ctx.Err() != nil {
			c.tel.ReportWarning(
				report_scraper_scrape_films,
				fmt.Errorf("page %d: %w", page, ctx.Err()),
				username,
			)
			break
		}

		html, err := c.FetchPage(ctx, username, page)
		if err != nil {
			c.tel.ReportWarning(
				report_scraper_scrape_films,
				fmt.Errorf("page %d: %w", page, err),
				username,
			)
			break
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			c.tel.ReportBroken(
				report_scraper_scrape_films,
				fmt.Errorf("parse page %d: %w", page, err),
				username,
			)
			break
		}

		films = append(films, FilmsFromDocument(doc, c.tel)...)

		if !HasNextPage(doc) {
			break
		}
		if page == c.MaxPages {
			c.tel.ReportWarning(
				report_scraper_scrape_films,
				fmt.Errorf("stopped at page cap %d", c.MaxPages),
				username,
			)
		}
	}

	span.SetAttributes(
		attribute.String("letterboxd.username", username),
		attribute.Int("letterboxd.films", len(films)),
	)
	c.tel.ReportDebug(report_scraper_scrape_films, username, len(films))
	return films
}
