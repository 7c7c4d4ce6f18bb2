package commands

import (
	"os"
	"path/filepath"
	"testing"

	"recipescrape/lib/configutil"
	"recipescrape/lib/scrapers/magimix"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), defaultConfigName))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, "./storage/recipes_url.csv", cfg.Storage.ListingFile)
	require.Equal(t, "./storage/recipes_ingredients.csv", cfg.Storage.DetailsFile)
	require.Equal(t, magimix.DefaultSelectors, cfg.Selectors)
	require.False(t, cfg.Storage.Database.Enabled())
}

func TestLoadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, defaultConfigName)
	writeConfig(t, path, `{
		site: { origin: "https://staging.magimix.fr" },
		selectors: { author: "p.author" },
		http: { requests_per_second: 2 },
		workers: 2,
	}`)
	writeConfig(t, configutil.LocalPath(path), `{
		workers: 6,
		storage: { database: { file: "./storage/recipes.db" } },
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://staging.magimix.fr", cfg.Site.Origin)
	require.Equal(t, magimix.DefaultListingPath, cfg.Site.ListingPath)
	require.Equal(t, "p.author", cfg.Selectors.Author)
	require.Equal(t, magimix.DefaultSelectors.CardTitle, cfg.Selectors.CardTitle)
	require.Equal(t, 2.0, cfg.Http.RequestsPerSecond)
	require.Equal(t, 30, cfg.Http.TimeoutSeconds)
	require.Equal(t, 6, cfg.Workers)
	require.Equal(t, "./storage/recipes.db", cfg.Storage.Database.File)
	require.True(t, cfg.Storage.Database.Enabled())
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	negative := filepath.Join(dir, "negative.json5")
	writeConfig(t, negative, `{ workers: -1 }`)
	_, err := LoadConfig(negative)
	require.Error(t, err)

	broken := filepath.Join(dir, "broken.json5")
	writeConfig(t, broken, `{ workers: `)
	_, err = LoadConfig(broken)
	require.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(configEnv, "")
	require.Equal(t, defaultConfigName, resolveConfigPath(defaultConfigName, false))

	t.Setenv(configEnv, "/etc/recipescrape.json5")
	require.Equal(t, "/etc/recipescrape.json5", resolveConfigPath(defaultConfigName, false))
	require.Equal(t, "mine.json5", resolveConfigPath("mine.json5", true))
}
