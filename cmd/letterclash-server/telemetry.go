package main

import (
	"context"
	"letterclash-backend/internal/components/telemetry"
	"letterclash-backend/lib/restyutil"
	"letterclash-backend/lib/serviceutil"
	"log/slog"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

func InitTelemetry(ctx context.Context, verbose bool, cfg telemetry.Config) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	otel, err := telemetry.Setup(ctx, "letterclash-server", cfg)
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)
}

// InitRestyDumps writes every http exchange of the given clients under
// .dev/resty/<name>.
func InitRestyDumps(clients map[string]*resty.Client) {
	for name, client := range clients {
		output, err := restyutil.NewFilesystemOutput(filepath.Join(".dev", "resty", name))
		if err != nil {
			slog.Warn("failed to create resty dump directory", "client", name, "err", err)
			continue
		}
		restyutil.DumpResponses(client, output)
	}
}
