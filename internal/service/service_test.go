package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/scrapers/letterboxd"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	films   []letterboxd.Film
	html    string
	pageErr error

	mu        sync.Mutex
	usernames []string
}

func (f *fakeScraper) ScrapeFilms(ctx context.Context, username string) []letterboxd.Film {
	f.mu.Lock()
	f.usernames = append(f.usernames, username)
	f.mu.Unlock()
	return f.films
}

func (f *fakeScraper) FetchPage(ctx context.Context, username string, page int) (string, error) {
	if f.pageErr != nil {
		return "", f.pageErr
	}
	return f.html, nil
}

type fakeResolver struct {
	posters map[string]string
	cached  int
	cleared bool
}

func (f *fakeResolver) ResolveMany(ctx context.Context, titles []string) map[string]string {
	out := map[string]string{}
	for _, t := range titles {
		if p, ok := f.posters[t]; ok {
			out[t] = p
		}
	}
	return out
}

func (f *fakeResolver) Enrich(ctx context.Context, films []letterboxd.Film) []letterboxd.Film {
	out := []letterboxd.Film{}
	for _, film := range films {
		p, ok := f.posters[film.Title]
		if !ok {
			continue
		}
		film.Poster = &p
		out = append(out, film)
	}
	return out
}

func (f *fakeResolver) ClearCache() {
	f.cleared = true
	f.cached = 0
}

func (f *fakeResolver) CacheSize() int {
	return f.cached
}

func ptr[T any](v T) *T {
	return &v
}

func newTestServer(t *testing.T, scraper *fakeScraper, resolver *fakeResolver, opts Options) (*httptest.Server, *telemetry.Recorder) {
	t.Helper()
	rec := &telemetry.Recorder{}
	srv := httptest.NewServer(NewService(scraper, resolver, opts, rec).Handler())
	t.Cleanup(srv.Close)
	return srv, rec
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestGetFilms(t *testing.T) {
	films := []letterboxd.Film{
		{Title: "Dune (2021)", Rating: ptr(4.5)},
		{Title: letterboxd.UnknownTitle},
	}
	scraper := &fakeScraper{films: films}
	srv, rec := newTestServer(t, scraper, &fakeResolver{}, Options{})

	res := do(t, http.MethodGet, srv.URL+"/api/films/dave", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))

	got := decode[[]letterboxd.Film](t, res)
	if diff := cmp.Diff(films, got); diff != "" {
		t.Fatalf("films mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"dave"}, scraper.usernames)

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, "service: "+report_films_rated, counts[0].Id)
	require.Equal(t, []any{int64(1)}, counts[0].Params)
}

func TestGetFilmsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, &fakeScraper{}, &fakeResolver{}, Options{})

	res := do(t, http.MethodGet, srv.URL+"/api/films/nobody", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(res.Body)
	require.NoError(t, err)
	require.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestPostFilmPosters(t *testing.T) {
	resolver := &fakeResolver{posters: map[string]string{
		"Dune (2021)": "https://image.tmdb.org/t/p/w500/dune.jpg",
	}}
	srv, _ := newTestServer(t, &fakeScraper{}, resolver, Options{})

	res := do(t, http.MethodPost, srv.URL+"/api/films/posters", []letterboxd.Film{
		{Title: "Dune (2021)", Rating: ptr(4.0)},
		{Title: "Nothing"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	got := decode[[]letterboxd.Film](t, res)
	want := []letterboxd.Film{{
		Title:  "Dune (2021)",
		Poster: ptr("https://image.tmdb.org/t/p/w500/dune.jpg"),
		Rating: ptr(4.0),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("films mismatch (-want +got):\n%s", diff)
	}
}

func TestPostFilmPostersBadBody(t *testing.T) {
	srv, rec := newTestServer(t, &fakeScraper{}, &fakeResolver{}, Options{})

	res := do(t, http.MethodPost, srv.URL+"/api/films/posters", "{not json")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	body := decode[errorResponse](t, res)
	require.Contains(t, body.Error, "invalid request body")
	require.Len(t, rec.Reports("debug"), 1)
}

func TestPostFilmPostersTooMany(t *testing.T) {
	srv, _ := newTestServer(t, &fakeScraper{}, &fakeResolver{}, Options{MaxBatch: 1})

	res := do(t, http.MethodPost, srv.URL+"/api/films/posters", []letterboxd.Film{
		{Title: "a"},
		{Title: "b"},
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
}

func TestPostResolvePosters(t *testing.T) {
	resolver := &fakeResolver{posters: map[string]string{
		"Heat (1995)": "https://image.tmdb.org/t/p/w500/heat.jpg",
	}}
	srv, _ := newTestServer(t, &fakeScraper{}, resolver, Options{})

	res := do(t, http.MethodPost, srv.URL+"/api/posters/resolve", resolveRequest{
		Titles: []string{"Heat (1995)", "Missing"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	got := decode[resolveResponse](t, res)
	require.Equal(t, map[string]string{
		"Heat (1995)": "https://image.tmdb.org/t/p/w500/heat.jpg",
	}, got.Posters)
}

func TestDeletePosterCache(t *testing.T) {
	resolver := &fakeResolver{cached: 7}
	srv, _ := newTestServer(t, &fakeScraper{}, resolver, Options{})

	res := do(t, http.MethodDelete, srv.URL+"/api/posters/cache", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 7, decode[clearCacheResponse](t, res).Cleared)
	require.True(t, resolver.cleared)
}

func TestDebugHtml(t *testing.T) {
	scraper := &fakeScraper{html: "<html>grid</html>"}

	srv, _ := newTestServer(t, scraper, &fakeResolver{}, Options{})
	res := do(t, http.MethodGet, srv.URL+"/api/debug/html/dave", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	srv, _ = newTestServer(t, scraper, &fakeResolver{}, Options{Debug: true})
	res = do(t, http.MethodGet, srv.URL+"/api/debug/html/dave", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "text/html")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(res.Body)
	require.NoError(t, err)
	require.Equal(t, "<html>grid</html>", buf.String())
}

func TestDebugHtmlFetchError(t *testing.T) {
	scraper := &fakeScraper{pageErr: errors.New("status 404")}
	srv, rec := newTestServer(t, scraper, &fakeResolver{}, Options{Debug: true})

	res := do(t, http.MethodGet, srv.URL+"/api/debug/html/dave", nil)
	require.Equal(t, http.StatusBadGateway, res.StatusCode)
	require.Len(t, rec.Reports("warning"), 1)
}
