package tmdb

import (
	"context"
	"errors"
	"fmt"
	"letterclash-backend/internal/components/assert"
	"letterclash-backend/internal/components/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_search_movies = "client.search-movies"
)

const (
	DefaultBaseUrl      = "https://api.themoviedb.org/3"
	DefaultImageBaseUrl = "https://image.tmdb.org/t/p/w500"
)

var ErrMissingApiKey = errors.New("tmdb: api key not configured")

type ClientOptions struct {
	ApiKey  string
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// Timeout defaults to 10 seconds.
	Timeout time.Duration
}

type Movie struct {
	Id          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  *string `json:"poster_path"`
}

type searchResponse struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}

// Client is a client for the TMDB search api.
type Client struct {
	Http *resty.Client

	apiKey string
	tel    telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("tmdb", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetHeader("accept", "application/json")
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, "letterclash/tmdb", tel)

	return &Client{
		Http:   httpClient,
		apiKey: opts.ApiKey,
		tel:    tel,
	}
}

// SearchMovies returns the search results for a free text query in the
// order TMDB ranks them.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	if c.apiKey == "" {
		return nil, ErrMissingApiKey
	}

	c.tel.ReportDebug(report_client_search_movies, query)

	var body searchResponse
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("query", query).
		SetResult(&body).
		Get("/search/movie")
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search %q: unexpected status %s", query, res.Status())
	}
	return body.Results, nil
}
