package service

import (
	"context"
	"letterclash-backend/internal/components/assert"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/scrapers/letterboxd"
	"net/http"
	"time"
)

const (
	report_films_scrape   = "films.scrape"
	report_films_rated    = "films.rated"
	report_posters_enrich = "posters.enrich"
	report_posters_cache  = "posters.cache"
	report_http_decode    = "http.decode"
	report_http_write     = "http.write"
	report_debug_html     = "debug.html"
)

// FilmScraper reads a user's film grid.
//
// note: fault injection point
type FilmScraper interface {
	ScrapeFilms(ctx context.Context, username string) []letterboxd.Film
	FetchPage(ctx context.Context, username string, page int) (string, error)
}

// PosterResolver resolves and caches posters of films.
//
// note: fault injection point
type PosterResolver interface {
	ResolveMany(ctx context.Context, titles []string) map[string]string
	Enrich(ctx context.Context, films []letterboxd.Film) []letterboxd.Film
	ClearCache()
	CacheSize() int
}

type Options struct {
	// ScrapeTimeout bounds a whole scrape of a user's films, defaults to 2
	// minutes.
	ScrapeTimeout time.Duration
	// PosterTimeout bounds a single poster batch, defaults to 30 seconds.
	PosterTimeout time.Duration
	// MaxBatch is the most films or titles a single poster request may
	// contain, defaults to 200.
	MaxBatch      int
	// Debug exposes the raw html of a user's first film page.
	Debug         bool
}

// Service exposes the film scraper and poster resolver over http.
type Service struct {
	scraper  FilmScraper
	resolver PosterResolver
	opts     Options
	tel      telemetry.API
}

func NewService(scraper FilmScraper, resolver PosterResolver, opts Options, tel telemetry.API) Service {
	assert.NotNil(scraper)
	assert.NotNil(resolver)
	assert.NotNil(tel)

	if opts.ScrapeTimeout <= 0 {
		opts.ScrapeTimeout = 2 * time.Minute
	}
	if opts.PosterTimeout <= 0 {
		opts.PosterTimeout = 30 * time.Second
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 200
	}

	return Service{
		scraper:  scraper,
		resolver: resolver,
		opts:     opts,
		tel:      telemetry.NewScopedAPI("service", tel),
	}
}

// Handler returns the routes of the service.
func (s Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/films/{username}", s.getFilms)
	mux.HandleFunc("POST /api/films/posters", s.postFilmPosters)
	mux.HandleFunc("POST /api/posters/resolve", s.postResolvePosters)
	mux.HandleFunc("DELETE /api/posters/cache", s.deletePosterCache)
	if s.opts.Debug {
		mux.HandleFunc("GET /api/debug/html/{username}", s.getDebugHtml)
	}
	return mux
}
