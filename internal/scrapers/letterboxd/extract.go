package letterboxd

import (
	"fmt"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/lib/htmlutil"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_extract_film = "extract.film"
)

const (
	gridItemSelector  = "li.griditem"
	componentSelector = "div.react-component"
	ratingSelector    = "span.rating"
	nextPageSelector  = "a.next"

	ratingClassPrefix = "rated-"
)

// ExtractTitle reads the title of a grid item, it prefers the
// data-item-name of the nested react component and falls back to the alt
// text of the poster image.
func ExtractTitle(item *goquery.Selection) string {
	name := htmlutil.CleanText(item.Find(componentSelector).First().AttrOr("data-item-name", ""))
	if name != "" {
		return name
	}
	alt := htmlutil.CleanText(item.Find("img").First().AttrOr("alt", ""))
	if alt != "" {
		return alt
	}
	return UnknownTitle
}

// ExtractRating reads the `rated-N` class of a grid item's rating span,
// N is in half stars (0-10) and is returned in stars (0-5).
// It returns nil if the film is unrated or the class could not be read.
func ExtractRating(item *goquery.Selection) *float64 {
	rating := item.Find(ratingSelector).First()
	if rating.Length() == 0 {
		return nil
	}
	for _, class := range strings.Fields(rating.AttrOr("class", "")) {
		if !strings.HasPrefix(class, ratingClassPrefix) {
			continue
		}
		halfStars, err := strconv.Atoi(strings.TrimPrefix(class, ratingClassPrefix))
		if err != nil || halfStars < 0 || halfStars > 10 {
			return nil
		}
		stars := float64(halfStars) / 2
		return &stars
	}
	return nil
}

// HasNextPage reports whether the page links to a following page.
func HasNextPage(doc *goquery.Document) bool {
	return doc.Find(nextPageSelector).Length() > 0
}

// FilmsFromDocument extracts a film out of every grid item on a page, a grid
// item that fails to extract is reported and skipped.
func FilmsFromDocument(doc *goquery.Document, tel telemetry.API) []Film {
	return filmsFromItems(doc.Find(gridItemSelector), extractFilm, tel)
}

func extractFilm(item *goquery.Selection) Film {
	return Film{
		Title:  ExtractTitle(item),
		Rating: ExtractRating(item),
	}
}

func filmsFromItems(items *goquery.Selection, extract func(*goquery.Selection) Film, tel telemetry.API) []Film {
	films := make([]Film, 0, items.Length())
	items.Each(func(i int, item *goquery.Selection) {
		film, err := filmFromItem(item, extract)
		if err != nil {
			tel.ReportBroken(report_extract_film, err, i)
			return
		}
		films = append(films, film)
	})
	return films
}

func filmFromItem(item *goquery.Selection, extract func(*goquery.Selection) Film) (film Film, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract grid item: %v", r)
		}
	}()
	return extract(item), nil
}
