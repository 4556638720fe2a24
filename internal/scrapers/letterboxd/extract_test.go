package letterboxd

import (
	"fmt"
	"letterclash-backend/internal/components/telemetry"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func gridItem(name, alt, ratingClass string) string {
	var b strings.Builder
	b.WriteString(`<li class="griditem">`)
	if name != "" {
		fmt.Fprintf(&b, `<div class="react-component poster" data-item-name="%s">`, name)
	} else {
		b.WriteString(`<div class="react-component poster">`)
	}
	if alt != "" {
		fmt.Fprintf(&b, `<img class="image" src="empty-poster.png" alt="%s"/>`, alt)
	}
	b.WriteString(`</div>`)
	if ratingClass != "" {
		fmt.Fprintf(&b, `<p class="poster-viewingdata"><span class="%s">★★★</span></p>`, ratingClass)
	}
	b.WriteString(`</li>`)
	return b.String()
}

func gridPage(hasNext bool, items ...string) string {
	next := ""
	if hasNext {
		next = `<div class="paginate-nextprev"><a class="next" href="/page/2/">Older</a></div>`
	}
	return fmt.Sprintf(
		`<html><body><ul class="poster-list grid">%s</ul>%s</body></html>`,
		strings.Join(items, ""),
		next,
	)
}

func mustDocument(t testing.TB, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func firstItem(t testing.TB, item string) *goquery.Selection {
	doc := mustDocument(t, gridPage(false, item))
	return doc.Find(gridItemSelector).First()
}

func TestExtractTitle(t *testing.T) {
	testCases := []struct {
		name     string
		item     string
		expected string
	}{
		{
			name:     "attribute wins over alt text",
			item:     gridItem("Dune (2021)", "Poster for Dune", ""),
			expected: "Dune (2021)",
		},
		{
			name:     "falls back to alt text",
			item:     gridItem("", "Arrival", ""),
			expected: "Arrival",
		},
		{
			name:     "empty attribute falls back to alt text",
			item:     `<li class="griditem"><div class="react-component" data-item-name=""><img alt="Heat"/></div></li>`,
			expected: "Heat",
		},
		{
			name:     "unknown when both are absent",
			item:     gridItem("", "", ""),
			expected: UnknownTitle,
		},
		{
			name:     "unknown when there is no markup at all",
			item:     `<li class="griditem"></li>`,
			expected: UnknownTitle,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractTitle(firstItem(t, test.item)))
		})
	}
}

func TestExtractRating(t *testing.T) {
	for halfStars := 0; halfStars <= 10; halfStars++ {
		item := gridItem("Film", "", fmt.Sprintf("rating -micro -darker rated-%d", halfStars))
		rating := ExtractRating(firstItem(t, item))
		require.NotNil(t, rating, "rated-%d", halfStars)
		require.Equal(t, float64(halfStars)/2, *rating, "rated-%d", halfStars)
	}

	known := map[string]float64{
		"rating rated-10": 5.0,
		"rating rated-7":  3.5,
		"rating rated-1":  0.5,
	}
	for class, expected := range known {
		rating := ExtractRating(firstItem(t, gridItem("Film", "", class)))
		require.NotNil(t, rating)
		require.Equal(t, expected, *rating)
	}

	absent := []string{
		"",
		"rating",
		"rating rated-",
		"rating rated-abc",
		"rating rated-11",
		"rating rated--2",
	}
	for _, class := range absent {
		item := gridItem("Film", "", class)
		if class == "" {
			item = gridItem("Film", "", "")
		}
		require.Nil(t, ExtractRating(firstItem(t, item)), "class %q", class)
	}
}

func TestHasNextPage(t *testing.T) {
	require.True(t, HasNextPage(mustDocument(t, gridPage(true))))
	require.False(t, HasNextPage(mustDocument(t, gridPage(false))))
}

func TestFilmsFromDocument(t *testing.T) {
	html := gridPage(
		true,
		gridItem("Dune (2021)", "Dune", "rating rated-9"),
		gridItem("", "Heat", ""),
		gridItem("", "", "rating rated-4"),
	)
	doc := mustDocument(t, html)
	rec := &telemetry.Recorder{}

	films := FilmsFromDocument(doc, rec)
	require.Len(t, films, doc.Find(gridItemSelector).Length())

	nine := 4.5
	two := 2.0
	expected := []Film{
		{Title: "Dune (2021)", Rating: &nine},
		{Title: "Heat"},
		{Title: UnknownTitle, Rating: &two},
	}
	require.Empty(t, cmp.Diff(expected, films))
	require.Empty(t, rec.Reports("broken"))
}

func TestFilmFromNilItem(t *testing.T) {
	_, err := filmFromItem(nil, extractFilm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "extract grid item")
}

func TestFilmsFromItemsSkipsFailedItem(t *testing.T) {
	doc := mustDocument(t, gridPage(
		false,
		gridItem("A", "", "rating rated-2"),
		gridItem("B", "", ""),
		gridItem("C", "", ""),
	))
	rec := &telemetry.Recorder{}

	failOnB := func(item *goquery.Selection) Film {
		film := extractFilm(item)
		if film.Title == "B" {
			var broken *goquery.Selection
			broken.Find("img")
		}
		return film
	}
	films := filmsFromItems(doc.Find(gridItemSelector), failOnB, rec)

	titles := make([]string, len(films))
	for i, f := range films {
		titles[i] = f.Title
	}
	require.Equal(t, []string{"A", "C"}, titles)

	broken := rec.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, report_extract_film, broken[0].Id)
	require.Len(t, broken[0].Params, 2)
	require.ErrorContains(t, broken[0].Params[0].(error), "extract grid item")
	require.Equal(t, 1, broken[0].Params[1])
}

func TestFilmsFromEmptyDocument(t *testing.T) {
	films := FilmsFromDocument(mustDocument(t, "<html></html>"), &telemetry.Recorder{})
	require.Empty(t, films)
}
