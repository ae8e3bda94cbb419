package sitemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/metrics"
	"github.com/lysyi3m/sitemap-comb/app/site"
)

const DefaultBuildTimeout = 30 * time.Second

type GeneratorConfig struct {
	URLs          *site.URLBuilder
	StylesheetURL string
	Timeout       time.Duration
	// Used when the source reports no languages at all.
	FallbackLanguages []site.Language
	Recorder          metrics.Recorder
}

// Generator runs page selection, annotation and document building for one source.
type Generator struct {
	source            site.Source
	urls              *site.URLBuilder
	stylesheetURL     string
	timeout           time.Duration
	fallbackLanguages []site.Language
	recorder          metrics.Recorder
}

func NewGenerator(source site.Source, config GeneratorConfig) *Generator {
	g := &Generator{
		source:            source,
		urls:              config.URLs,
		stylesheetURL:     config.StylesheetURL,
		timeout:           config.Timeout,
		fallbackLanguages: config.FallbackLanguages,
		recorder:          config.Recorder,
	}

	if g.timeout <= 0 {
		g.timeout = DefaultBuildTimeout
	}
	if g.recorder == nil {
		g.recorder = metrics.NoopRecorder{}
	}
	if g.stylesheetURL == "" && g.urls != nil {
		g.stylesheetURL = g.urls.Resolve("sitemap.xsl")
	}

	return g
}

func (g *Generator) Run(ctx context.Context, options *Options) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	xml, count, err := g.run(ctx, options)

	duration := time.Since(start)
	g.recorder.ObserveBuildDuration(duration)
	g.recorder.IncBuildOutcome(outcomeOf(err))

	if err != nil {
		slog.Error("Sitemap build failed", "duration", duration, "error", err)
		return "", err
	}

	g.recorder.SetSitemapURLs(count)
	slog.Info("Sitemap built", "urls", count, "bytes", len(xml), "duration", duration)

	return xml, nil
}

func (g *Generator) run(ctx context.Context, options *Options) (string, int, error) {
	if options == nil {
		options = DefaultOptions()
	}

	languages, err := g.source.Languages(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load languages: %w", err)
	}
	if len(languages) == 0 {
		languages = g.fallbackLanguages
	}

	pages, err := g.source.Pages(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load pages: %w", err)
	}

	pages = NewSelector(options).Run(pages)

	if options.Process != nil {
		pages = options.Process(pages)
		if pages == nil {
			return "", 0, &ProcessResultTypeError{Name: options.ProcessName}
		}
	}

	annotations, err := NewAnnotator(options).Run(ctx, pages)
	if err != nil {
		return "", 0, err
	}

	slog.Debug("Pages selected for sitemap", "pages", len(pages), "languages", len(languages))

	return NewBuilder(options, g.urls, g.stylesheetURL).Run(ctx, pages, annotations, languages)
}

func outcomeOf(err error) metrics.BuildOutcome {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrConfiguration):
		return metrics.OutcomeConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeInternalError
	default:
		return metrics.OutcomeSourceError
	}
}
