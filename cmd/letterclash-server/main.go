package main

import (
	"flag"
	"letterclash-backend/internal/components/chrono"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/internal/posters"
	"letterclash-backend/internal/scrapers/letterboxd"
	"letterclash-backend/internal/scrapers/tmdb"
	"letterclash-backend/internal/service"
	"letterclash-backend/lib/serviceutil"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configName := flag.String("config", "config.json5", "Path to the json5 config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := ReadConfig(*configName)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	InitTelemetry(ctx, *verbose, cfg.Telemetry)
	tel := telemetry.SlogAPI{}

	scraper, err := letterboxd.NewClient(letterboxd.ClientOptions{
		BaseUrl:           cfg.Letterboxd.BaseUrl,
		Timeout:           seconds(cfg.Letterboxd.TimeoutSeconds),
		RequestsPerSecond: cfg.Letterboxd.RequestsPerSecond,
		MaxPages:          cfg.Letterboxd.MaxPages,
		CloudflareBypass:  !cfg.Letterboxd.DisableCloudflareBypass,
	}, tel)
	if err != nil {
		serviceutil.Fatal("init letterboxd scraper", err)
	}

	if cfg.Tmdb.ApiKey == "" {
		slog.Warn("no tmdb api key configured, posters will not resolve")
	}
	search := tmdb.NewClient(tmdb.ClientOptions{
		ApiKey:  cfg.Tmdb.ApiKey,
		BaseUrl: cfg.Tmdb.BaseUrl,
		Timeout: 10 * time.Second,
	}, tel)
	resolver := posters.NewResolver(search, posters.NewCache(), posters.ResolverOptions{
		ImageBaseUrl:     cfg.Tmdb.ImageBaseUrl,
		BatchConcurrency: cfg.Tmdb.BatchConcurrency,
	}, tel)

	if *verbose {
		InitRestyDumps(map[string]*resty.Client{
			"letterboxd": scraper.Http,
			"tmdb":       search.Http,
		})
	}

	if cfg.Tmdb.ClearCacheCron != "" {
		cron := chrono.NewStandardCron(ctx, tel)
		err = cron.Cron(cfg.Tmdb.ClearCacheCron, resolver.ClearCache)
		if err != nil {
			serviceutil.Fatal("schedule poster cache clear", err)
		}
	}

	svc := service.NewService(scraper, resolver, service.Options{
		ScrapeTimeout: seconds(cfg.Service.ScrapeTimeoutSeconds),
		PosterTimeout: seconds(cfg.Service.PosterTimeoutSeconds),
		MaxBatch:      cfg.Service.MaxBatch,
		Debug:         cfg.Service.Debug,
	}, tel)

	err = serviceutil.StartHttpServer(ctx, cfg.Port, svc.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
