package cmd

import (
	"errors"
	"fmt"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/posters"
	"letterclash-backend/internal/scrapers/letterboxd"
	"letterclash-backend/internal/scrapers/tmdb"
	"letterclash-backend/lib/configutil"
	"os"

	"github.com/spf13/cobra"
)

type Config struct {
	LetterboxdBaseUrl string  `json:"letterboxd_base_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	MaxPages          int     `json:"max_pages"`
	TmdbApiKey        string  `json:"tmdb_api_key"`
	TmdbBaseUrl       string  `json:"tmdb_base_url"`
}

var (
	verbose    bool
	jsonOutput bool
	configName string
)

var rootCmd = &cobra.Command{
	Use:   "letterclash-cli",
	Short: "letterclash-cli scrapes letterboxd film grids and resolves their posters from the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as json instead of a table.")
	rootCmd.PersistentFlags().StringVar(&configName, "config", "letterclash-cli.json5", "Name of the json5 config file, searched for from the working directory up.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively(configName, Config{
		LetterboxdBaseUrl: letterboxd.DefaultBaseUrl,
		RequestsPerSecond: 4,
		MaxPages:          500,
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if key, ok := os.LookupEnv("TMDB_API_KEY"); ok && key != "" {
		cfg.TmdbApiKey = key
	}
	return cfg, nil
}

func newScraper(cfg Config) (*letterboxd.Client, error) {
	opts := letterboxd.DefaultClientOptions()
	opts.BaseUrl = cfg.LetterboxdBaseUrl
	opts.RequestsPerSecond = cfg.RequestsPerSecond
	opts.MaxPages = cfg.MaxPages
	return letterboxd.NewClient(opts, telemetry.SlogAPI{})
}

func newResolver(cfg Config) *posters.Resolver {
	search := tmdb.NewClient(tmdb.ClientOptions{
		ApiKey:  cfg.TmdbApiKey,
		BaseUrl: cfg.TmdbBaseUrl,
	}, telemetry.SlogAPI{})
	return posters.NewResolver(search, posters.NewCache(), posters.ResolverOptions{}, telemetry.SlogAPI{})
}
