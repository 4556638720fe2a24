package main

import (
	"errors"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/lib/configutil"
	"log/slog"
	"os"
	"time"
)

type LetterboxdConfig struct {
	BaseUrl           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	MaxPages          int     `json:"max_pages"`

	// zero values never override defaults when merging config files, so the
	// bypass is opt-out.
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

type TmdbConfig struct {
	ApiKey       string `json:"api_key"`
	BaseUrl      string `json:"base_url"`
	ImageBaseUrl string `json:"image_base_url"`

	// BatchConcurrency is the number of titles looked up at once per batch.
	BatchConcurrency int    `json:"batch_concurrency"`
	// ClearCacheCron is a cron spec on which the poster cache is emptied,
	// leave it empty to keep posters for the lifetime of the process.
	ClearCacheCron   string `json:"clear_cache_cron"`
}

type ServiceConfig struct {
	ScrapeTimeoutSeconds int  `json:"scrape_timeout_seconds"`
	PosterTimeoutSeconds int  `json:"poster_timeout_seconds"`
	MaxBatch             int  `json:"max_batch"`
	Debug                bool `json:"debug"`
}

type Config struct {
	Port       int              `json:"port"`
	Letterboxd LetterboxdConfig `json:"letterboxd"`
	Tmdb       TmdbConfig       `json:"tmdb"`
	Service    ServiceConfig    `json:"service"`
	Telemetry  telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		Port: 8080,
		Letterboxd: LetterboxdConfig{
			TimeoutSeconds:    10,
			RequestsPerSecond: 4,
			MaxPages:          500,
		},
		Tmdb: TmdbConfig{
			BatchConcurrency: 4,
		},
		Service: ServiceConfig{
			ScrapeTimeoutSeconds: 120,
			PosterTimeoutSeconds: 30,
			MaxBatch:             200,
		},
	}
}

// ReadConfig reads config.json5 from the working directory, a missing file
// leaves the defaults in place. TMDB_API_KEY takes precedence over the
// configured api key.
func ReadConfig(name string) (Config, error) {
	cfg, err := configutil.ReadConfig(name, defaultConfig())
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("no config file found, using defaults", "name", name)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	if key, ok := os.LookupEnv("TMDB_API_KEY"); ok && key != "" {
		cfg.Tmdb.ApiKey = key
	}
	return cfg, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
