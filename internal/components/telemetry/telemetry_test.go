package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("posters", NewScopedAPI("letterclash", rec))

	scoped.ReportBroken("resolver.resolve-poster", errors.New("boom"))
	scoped.ReportWarning("resolver.match", "dune")
	scoped.ReportDebug("cache hit")
	scoped.ReportCount("cache.size", 3)

	reports := rec.Reports("")
	require.Len(t, reports, 4)
	require.Equal(t, "letterclash: posters: resolver.resolve-poster", reports[0].Id)
	require.Equal(t, "broken", reports[0].Kind)
	require.Equal(t, "letterclash: posters: resolver.match", reports[1].Id)
	require.Equal(t, "letterclash: posters: cache hit", reports[2].Id)
	require.Equal(t, []any{int64(3)}, reports[3].Params)

	require.Len(t, rec.Reports("warning"), 1)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}
