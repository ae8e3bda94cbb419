package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	SourceDirectory = "directory"
	SourceSQLite    = "sqlite"
	SourceFeed      = "feed"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type rawCfg struct {
	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" default:"http://localhost:8080" description:"Public base URL of the site (e.g., https://example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the cache flush endpoint (optional)"`

	// Site source
	Source       string `long:"source" env:"SITE_SOURCE" default:"directory" choice:"directory" choice:"sqlite" choice:"feed" description:"Where site pages are read from"`
	ContentDir   string `long:"content-dir" env:"CONTENT_DIR" default:"./content" description:"Content directory for the directory source"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./site.db" description:"SQLite database for the sqlite source"`
	SnapshotFrom string `long:"snapshot-from" env:"SNAPSHOT_FROM" description:"Content directory imported into the sqlite snapshot at startup (and on change with --watch)"`
	FeedURL      string `long:"feed-url" env:"FEED_URL" description:"RSS/Atom feed URL for the feed source"`
	Languages    string `long:"languages" env:"LANGUAGES" default:"en" description:"Comma-separated site languages, default language first"`
	HomePage     string `long:"home-page" env:"HOME_PAGE" default:"home" description:"Id of the home page"`

	// Sitemap
	SitemapConfig  string `long:"sitemap-config" env:"SITEMAP_CONFIG" default:"./sitemap.yml" description:"YAML file with sitemap options"`
	StylesheetPath string `long:"stylesheet" env:"STYLESHEET_PATH" description:"XSL stylesheet served at /sitemap.xsl (embedded default when empty)"`
	BuildTimeout   int    `long:"build-timeout" env:"BUILD_TIMEOUT" default:"30" description:"Sitemap build timeout in seconds"`
	Watch          bool   `long:"watch" env:"WATCH" description:"Invalidate the cached sitemap when content or options change"`

	// Cache
	CacheBackend string `long:"cache" env:"CACHE_BACKEND" default:"memory" choice:"memory" choice:"redis" description:"Sitemap cache backend"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the redis cache backend"`
	CacheTTL     int    `long:"cache-ttl" env:"CACHE_TTL" default:"0" description:"Cached sitemap lifetime in seconds (0 keeps it until invalidated)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Sitemap Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads .env (when present), then flags and environment variables.
// It returns nil, nil when --help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Source == SourceFeed && raw.FeedURL == "" {
		return nil, fmt.Errorf("failed to parse configuration: --feed-url is required for the feed source")
	}
	if raw.SnapshotFrom != "" && raw.Source != SourceSQLite {
		return nil, fmt.Errorf("failed to parse configuration: --snapshot-from requires the sqlite source")
	}
	if raw.BuildTimeout <= 0 {
		return nil, fmt.Errorf("failed to parse configuration: --build-timeout must be positive")
	}
	if raw.CacheTTL < 0 {
		return nil, fmt.Errorf("failed to parse configuration: --cache-ttl must not be negative")
	}

	return &Cfg{
		Port:           raw.Port,
		BaseUrl:        strings.TrimRight(raw.BaseUrl, "/"),
		APIAccessKey:   raw.APIAccessKey,
		Source:         raw.Source,
		ContentDir:     raw.ContentDir,
		DBPath:         raw.DBPath,
		SnapshotFrom:   raw.SnapshotFrom,
		FeedURL:        raw.FeedURL,
		Languages:      splitList(raw.Languages),
		HomePage:       raw.HomePage,
		SitemapConfig:  raw.SitemapConfig,
		StylesheetPath: raw.StylesheetPath,
		BuildTimeout:   time.Duration(raw.BuildTimeout) * time.Second,
		Watch:          raw.Watch,
		CacheBackend:   raw.CacheBackend,
		RedisAddr:      raw.RedisAddr,
		CacheTTL:       time.Duration(raw.CacheTTL) * time.Second,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
