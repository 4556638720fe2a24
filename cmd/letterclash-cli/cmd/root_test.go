package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("TMDB_API_KEY", "")
	configName = "letterclash-cli.json5"

	cfg, err := readConfig()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.MaxPages)
	require.Empty(t, cfg.TmdbApiKey)

	err = os.WriteFile(filepath.Join(dir, configName), []byte(`{ tmdb_api_key: "abc", max_pages: 3 }`), 0600)
	require.NoError(t, err)

	cfg, err = readConfig()
	require.NoError(t, err)
	require.Equal(t, "abc", cfg.TmdbApiKey)
	require.Equal(t, 3, cfg.MaxPages)

	t.Setenv("TMDB_API_KEY", "env")
	cfg, err = readConfig()
	require.NoError(t, err)
	require.Equal(t, "env", cfg.TmdbApiKey)
}
