package commands

import (
	"fmt"
	"os"
	"time"

	"recipescrape/lib/configutil"
	"recipescrape/lib/recipedb"
	"recipescrape/lib/restyutil"
	"recipescrape/lib/scrapers/magimix"
)

const (
	defaultConfigName = "recipescrape.json5"
	configEnv         = "RECIPESCRAPE_CONFIG"
)

type SiteConfig struct {
	Origin      string `json:"origin"`
	ListingPath string `json:"listing_path"`
	PageParam   string `json:"page_param"`
}

type HttpConfig struct {
	TimeoutSeconds    int     `json:"timeout_seconds"`
	UserAgent         string  `json:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	// every http exchange is dumped into this directory when set
	DumpDir string `json:"dump_dir"`
}

type StorageConfig struct {
	ListingFile string          `json:"listing_file"`
	DetailsFile string          `json:"details_file"`
	Database    recipedb.Config `json:"database"`
}

type Config struct {
	Site      SiteConfig        `json:"site"`
	Selectors magimix.Selectors `json:"selectors"`
	Http      HttpConfig        `json:"http"`
	Storage   StorageConfig     `json:"storage"`
	Workers   int               `json:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Origin:      magimix.DefaultOrigin,
			ListingPath: magimix.DefaultListingPath,
			PageParam:   magimix.DefaultPageParam,
		},
		Selectors: magimix.DefaultSelectors,
		Http: HttpConfig{
			TimeoutSeconds: 30,
			UserAgent:      restyutil.DefaultUserAgent,
		},
		Storage: StorageConfig{
			ListingFile: "./storage/recipes_url.csv",
			DetailsFile: "./storage/recipes_ingredients.csv",
		},
		Workers: 1,
	}
}

// resolveConfigPath prefers an explicit --config, then $RECIPESCRAPE_CONFIG.
func resolveConfigPath(flagValue string, explicit bool) string {
	if explicit {
		return flagValue
	}
	if env := os.Getenv(configEnv); env != "" {
		return env
	}
	return flagValue
}

func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.Load(path, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Http.RequestsPerSecond < 0 {
		return Config{}, fmt.Errorf("requests_per_second cannot be negative")
	}
	return cfg, nil
}

func (cfg Config) newScraper() (*magimix.Client, error) {
	var output restyutil.InstrumentOutput
	if cfg.Http.DumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(cfg.Http.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		output = fsOutput
	}

	http := restyutil.NewClient(restyutil.ClientOptions{
		Timeout:           time.Duration(cfg.Http.TimeoutSeconds) * time.Second,
		UserAgent:         cfg.Http.UserAgent,
		RequestsPerSecond: cfg.Http.RequestsPerSecond,
		CloudflareBypass:  cfg.Http.CloudflareBypass,
		Output:            output,
	})
	return magimix.NewClient(http, magimix.ClientOptions{
		Origin:      cfg.Site.Origin,
		ListingPath: cfg.Site.ListingPath,
		PageParam:   cfg.Site.PageParam,
		Selectors:   cfg.Selectors,
		Workers:     cfg.Workers,
	})
}
