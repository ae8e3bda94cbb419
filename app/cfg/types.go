package cfg

import "time"

type Cfg struct {
	// HTTP server
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Site source
	Source       string
	ContentDir   string
	DBPath       string
	SnapshotFrom string
	FeedURL      string
	Languages    []string
	HomePage     string

	// Sitemap
	SitemapConfig  string
	StylesheetPath string
	BuildTimeout   time.Duration
	Watch          bool

	// Cache
	CacheBackend string
	RedisAddr    string
	CacheTTL     time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
