package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/api"
	"github.com/lysyi3m/sitemap-comb/app/cache"
	"github.com/lysyi3m/sitemap-comb/app/cfg"
	"github.com/lysyi3m/sitemap-comb/app/metrics"
	"github.com/lysyi3m/sitemap-comb/app/site"
	"github.com/lysyi3m/sitemap-comb/app/sitemap"
)

const watchDebounce = 500 * time.Millisecond

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Sitemap Comb server", "version", appConfig.Version, "source", appConfig.Source)

	languages, err := site.ParseLanguages(appConfig.Languages)
	if err != nil {
		slog.Error("Invalid languages", "languages", appConfig.Languages, "error", err)
		os.Exit(1)
	}

	urls := site.NewURLBuilder(appConfig.BaseUrl)

	source, closeSource, err := newSource(appConfig, urls, languages)
	if err != nil {
		slog.Error("Failed to open site source", "source", appConfig.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	var importSnapshot func(ctx context.Context) error
	if snapshot, ok := source.(*site.SQLiteSource); ok && appConfig.SnapshotFrom != "" {
		importSnapshot = newSnapshotImport(appConfig, snapshot, languages)
		if err := importSnapshot(context.Background()); err != nil {
			slog.Error("Failed to import site snapshot", "from", appConfig.SnapshotFrom, "error", err)
			os.Exit(1)
		}
	}

	registry := sitemap.NewRegistry()
	optionsLoader := sitemap.NewOptionsLoader(appConfig.SitemapConfig, registry)
	if _, err := optionsLoader.Load(); err != nil {
		slog.Error("Failed to load sitemap options", "path", appConfig.SitemapConfig, "error", err)
		os.Exit(1)
	}

	store, err := newStore(appConfig)
	if err != nil {
		slog.Error("Failed to initialize cache", "backend", appConfig.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	recorder := metrics.NewPrometheusRecorder(nil)

	generator := sitemap.NewGenerator(source, sitemap.GeneratorConfig{
		URLs:              urls,
		Timeout:           appConfig.BuildTimeout,
		FallbackLanguages: languages,
		Recorder:          recorder,
	})
	sitemapCache := cache.NewSitemapCache(store, appConfig.CacheTTL, recorder)

	// Drop whatever an earlier run left in a shared store
	if err := sitemapCache.Invalidate(); err != nil {
		slog.Warn("Failed to clear cached sitemap", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if appConfig.Watch {
		watcher, err := newWatcher(appConfig, optionsLoader, sitemapCache, importSnapshot)
		if err != nil {
			slog.Error("Failed to start content watcher", "error", err)
			os.Exit(1)
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	apiHandler := api.NewHandler(generator, optionsLoader, sitemapCache, appConfig.StylesheetPath, recorder.Handler())
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appConfig.BuildTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port, "sitemap", urls.Resolve("sitemap.xml"))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Sitemap Comb server shutdown complete")
}

func newSource(appConfig *cfg.Cfg, urls *site.URLBuilder, languages []site.Language) (site.Source, func(), error) {
	switch appConfig.Source {
	case cfg.SourceSQLite:
		source, err := site.NewSQLiteSource(appConfig.DBPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Connected to site database", "path", appConfig.DBPath)
		return source, func() { source.Close() }, nil
	case cfg.SourceFeed:
		client := &http.Client{Timeout: appConfig.BuildTimeout}
		source := site.NewFeedSource(appConfig.FeedURL, appConfig.UserAgent, urls, languages, client)
		return source, func() {}, nil
	default:
		if _, err := os.Stat(appConfig.ContentDir); err != nil {
			return nil, nil, fmt.Errorf("content directory %s: %w", appConfig.ContentDir, err)
		}
		source := site.NewDirectorySource(appConfig.ContentDir, appConfig.HomePage, languages)
		return source, func() {}, nil
	}
}

func newStore(appConfig *cfg.Cfg) (cache.Store, error) {
	if appConfig.CacheBackend == cfg.CacheRedis {
		return cache.NewRedisStore(appConfig.RedisAddr, "sitemap-comb")
	}
	return cache.NewMemoryStore(), nil
}

// newSnapshotImport copies the content directory into the sqlite snapshot.
func newSnapshotImport(appConfig *cfg.Cfg, snapshot *site.SQLiteSource, languages []site.Language) func(ctx context.Context) error {
	content := site.NewDirectorySource(appConfig.SnapshotFrom, appConfig.HomePage, languages)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, appConfig.BuildTimeout)
		defer cancel()

		count, err := snapshot.Import(ctx, content)
		if err != nil {
			return err
		}
		slog.Info("Site snapshot imported", "from", appConfig.SnapshotFrom, "pages", count)
		return nil
	}
}

func newWatcher(appConfig *cfg.Cfg, optionsLoader *sitemap.OptionsLoader, sitemapCache *cache.SitemapCache,
	importSnapshot func(ctx context.Context) error) (*site.Watcher, error) {
	optionsPath, err := filepath.Abs(optionsLoader.Path())
	if err != nil {
		return nil, err
	}

	watcher, err := site.NewWatcher(watchDebounce, func(changed []string) {
		for _, path := range changed {
			if path == optionsPath {
				if _, err := optionsLoader.Load(); err != nil {
					slog.Error("Failed to reload sitemap options", "path", optionsPath, "error", err)
				} else {
					slog.Info("Sitemap options reloaded", "path", optionsPath)
				}
				break
			}
		}

		if importSnapshot != nil {
			if err := importSnapshot(context.Background()); err != nil {
				slog.Error("Failed to import site snapshot", "from", appConfig.SnapshotFrom, "error", err)
			}
		}

		if err := sitemapCache.Invalidate(); err != nil {
			slog.Error("Failed to invalidate sitemap cache", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	if appConfig.Source == cfg.SourceDirectory {
		if err := watcher.AddTree(appConfig.ContentDir); err != nil {
			watcher.Stop()
			return nil, err
		}
	}
	if importSnapshot != nil {
		if err := watcher.AddTree(appConfig.SnapshotFrom); err != nil {
			watcher.Stop()
			return nil, err
		}
	}
	if err := watcher.AddFile(optionsPath); err != nil {
		watcher.Stop()
		return nil, err
	}

	return watcher, nil
}
