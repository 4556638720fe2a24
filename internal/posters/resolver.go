package posters

import (
	"context"
	"errors"
	"fmt"
	"letterclash-backend/internal/components/assert"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/scrapers/letterboxd"
	"letterclash-backend/internal/scrapers/tmdb"
	"strings"
	"sync"
	"time"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	report_resolver_resolve_poster = "resolver.resolve-poster"
	report_resolver_match          = "resolver.match"
)

// below this the first search result is likely a different film, it is
// still used but reported.
const matchWarnThreshold = 0.6

// Searcher finds movies by free text, results must be ordered by relevance.
type Searcher interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.Movie, error)
}

type ResolverOptions struct {
	// ImageBaseUrl is prepended to poster paths, defaults to
	// tmdb.DefaultImageBaseUrl.
	ImageBaseUrl     string
	// BatchConcurrency is the number of titles ResolveMany looks up at
	// once, defaults to 4.
	BatchConcurrency int
	// LookupTimeout bounds a single search, defaults to 15 seconds.
	LookupTimeout    time.Duration
}

// Resolver resolves film titles to poster urls.
//
// Only successful lookups are cached, a title that could not be resolved
// is searched again on the next call.
type Resolver struct {
	search        Searcher
	cache         *Cache
	imageBaseUrl  string
	concurrency   int
	lookupTimeout time.Duration
	inflight      singleflight.Group
	tel           telemetry.API

	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	lookups     metric.Int64Counter
}

func NewResolver(search Searcher, cache *Cache, opts ResolverOptions, tel telemetry.API) *Resolver {
	assert.NotNil(search)
	assert.NotNil(cache)
	assert.NotNil(tel)

	if opts.ImageBaseUrl == "" {
		opts.ImageBaseUrl = tmdb.DefaultImageBaseUrl
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 4
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 15 * time.Second
	}

	meter := otel.Meter("letterclash/posters")
	cacheHits, _ := meter.Int64Counter("poster_cache_hits")
	cacheMisses, _ := meter.Int64Counter("poster_cache_misses")
	lookups, _ := meter.Int64Counter("poster_lookups")

	return &Resolver{
		search:        search,
		cache:         cache,
		imageBaseUrl:  strings.TrimSuffix(opts.ImageBaseUrl, "/"),
		concurrency:   opts.BatchConcurrency,
		lookupTimeout: opts.LookupTimeout,
		tel:           telemetry.NewScopedAPI("posters", tel),
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		lookups:       lookups,
	}
}

// ResolvePoster returns the poster url of a title, false if none was found
// or ctx is done first.
//
// Concurrent calls for the same uncached title share one search, the search
// outlives any single caller's ctx and is bounded by LookupTimeout instead.
func (r *Resolver) ResolvePoster(ctx context.Context, title string) (string, bool) {
	if url, ok := r.cache.Get(title); ok {
		r.cacheHits.Add(ctx, 1)
		return url, true
	}
	r.cacheMisses.Add(ctx, 1)

	ch := r.inflight.DoChan(title, func() (any, error) {
		// another caller may have finished between the cache read and DoChan
		if url, ok := r.cache.Get(title); ok {
			return url, nil
		}

		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.lookupTimeout)
		defer cancel()

		url, ok := r.lookup(lookupCtx, title)
		if !ok {
			return "", nil
		}
		r.cache.Set(title, url)
		return url, nil
	})

	select {
	case res := <-ch:
		url := res.Val.(string)
		return url, url != ""
	case <-ctx.Done():
		return "", false
	}
}

func (r *Resolver) lookup(ctx context.Context, title string) (string, bool) {
	query := NormalizeTitle(title)
	if query == "" {
		return "", false
	}

	r.lookups.Add(ctx, 1)
	movies, err := r.search.SearchMovies(ctx, query)
	if errors.Is(err, tmdb.ErrMissingApiKey) {
		r.tel.ReportDebug(report_resolver_resolve_poster, err, title)
		return "", false
	}
	if err != nil {
		r.tel.ReportWarning(
			report_resolver_resolve_poster,
			fmt.Errorf("search: %w", err),
			title,
		)
		return "", false
	}
	if len(movies) == 0 {
		r.tel.ReportDebug(report_resolver_resolve_poster, "no results", title)
		return "", false
	}

	first := movies[0]
	similarity := matchr.JaroWinkler(strings.ToLower(query), strings.ToLower(first.Title), false)
	if similarity < matchWarnThreshold {
		r.tel.ReportWarning(
			report_resolver_match,
			fmt.Errorf("first result %q is not similar to %q (%.2f)", first.Title, query, similarity),
		)
	}

	if first.PosterPath == nil || *first.PosterPath == "" {
		r.tel.ReportDebug(report_resolver_resolve_poster, "no poster path", title)
		return "", false
	}
	return r.imageBaseUrl + *first.PosterPath, true
}

// ResolveMany resolves every title independently, titles without a poster
// are left out of the result.
func (r *Resolver) ResolveMany(ctx context.Context, titles []string) map[string]string {
	result := make(map[string]string, len(titles))
	var mu sync.Mutex

	group := errgroup.Group{}
	group.SetLimit(r.concurrency)
	for _, title := range titles {
		group.Go(func() error {
			url, ok := r.ResolvePoster(ctx, title)
			if !ok {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			result[title] = url
			return nil
		})
	}
	group.Wait()

	return result
}

// Enrich sets the poster of every film that resolves to one and returns
// only those films, in their original order.
func (r *Resolver) Enrich(ctx context.Context, films []letterboxd.Film) []letterboxd.Film {
	titles := make([]string, 0, len(films))
	seen := make(map[string]struct{}, len(films))
	for _, f := range films {
		if _, ok := seen[f.Title]; ok {
			continue
		}
		seen[f.Title] = struct{}{}
		titles = append(titles, f.Title)
	}

	resolved := r.ResolveMany(ctx, titles)

	enriched := make([]letterboxd.Film, 0, len(resolved))
	for _, f := range films {
		url, ok := resolved[f.Title]
		if !ok {
			continue
		}
		f.Poster = &url
		enriched = append(enriched, f)
	}
	return enriched
}

// ClearCache forgets every resolved poster.
func (r *Resolver) ClearCache() {
	r.tel.ReportCount("cache.cleared", int64(r.cache.Len()))
	r.cache.Clear()
}

// CacheSize returns the number of cached posters.
func (r *Resolver) CacheSize() int {
	return r.cache.Len()
}
