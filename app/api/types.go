package api

import (
	"context"
	"net/http"

	"github.com/lysyi3m/sitemap-comb/app/cache"
	"github.com/lysyi3m/sitemap-comb/app/sitemap"
)

type GeneratorInterface interface {
	Run(ctx context.Context, options *sitemap.Options) (string, error)
}

type OptionsInterface interface {
	Get() (*sitemap.Options, error)
	Path() string
}

type SitemapCacheInterface interface {
	GetOrBuild(ctx context.Context, build cache.BuildFunc) (string, bool, error)
	Invalidate() error
	Store() cache.Store
}

var _ GeneratorInterface = (*sitemap.Generator)(nil)
var _ OptionsInterface = (*sitemap.OptionsLoader)(nil)
var _ SitemapCacheInterface = (*cache.SitemapCache)(nil)

type Handler struct {
	generator      GeneratorInterface
	options        OptionsInterface
	sitemapCache   SitemapCacheInterface
	stylesheetPath string
	metrics        http.Handler
}
