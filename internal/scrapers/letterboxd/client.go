package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"letterclash-backend/internal/components/assert"
	"letterclash-backend/internal/components/telemetry"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_page = "client.fetch-page"
)

const DefaultBaseUrl = "https://letterboxd.com"

var ErrEmptyUsername = errors.New("letterboxd: username must not be empty")

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl           string
	// Timeout is the connect + read timeout of a single page request,
	// defaults to 10 seconds.
	Timeout           time.Duration
	// RequestsPerSecond limits outgoing requests across all scrapes made by
	// this client, 0 disables the limit.
	RequestsPerSecond float64
	// MaxPages bounds the pages read for a single username, defaults to 500.
	MaxPages          int
	// CloudflareBypass makes requests with a browser-like TLS and header
	// profile.
	CloudflareBypass  bool
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseUrl:           DefaultBaseUrl,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 4,
		MaxPages:          500,
		CloudflareBypass:  true,
	}
}

// Client fetches pages of a user's film grid.
type Client struct {
	BaseUrl  *url.URL
	Http     *resty.Client
	MaxPages int

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("letterboxd_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 500
	}

	parsedBaseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(parsedBaseUrl.String())
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, "letterclash/letterboxd", tel)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	return &Client{
		BaseUrl:  parsedBaseUrl,
		Http:     httpClient,
		MaxPages: opts.MaxPages,
		tel:      tel,
	}, nil
}

// pageEndpoint returns the path of a page of a user's film grid, pages start
// at 1.
func pageEndpoint(username string, page int) string {
	username = url.PathEscape(username)
	if page <= 1 {
		return fmt.Sprintf("/%s/films/", username)
	}
	return fmt.Sprintf("/%s/films/page/%d/", username, page)
}

// FetchPage returns the raw html of a page of a user's film grid.
func (c *Client) FetchPage(ctx context.Context, username string, page int) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}

	endpoint := pageEndpoint(username, page)
	c.tel.ReportDebug(report_client_fetch_page, endpoint)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetch %s: unexpected status %s", endpoint, res.Status())
	}
	return res.String(), nil
}
