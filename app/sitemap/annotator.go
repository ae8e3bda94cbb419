package sitemap

import (
	"context"
	"math"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

type Annotator struct {
	priority  PriorityFunc
	frequency FrequencyFunc
}

func NewAnnotator(options *Options) *Annotator {
	return &Annotator{
		priority:  options.Priority.resolve(),
		frequency: options.Frequency.resolve(),
	}
}

// Run computes the enabled attributes for every page. Pages are never
// modified; the result is keyed by page ID.
func (a *Annotator) Run(ctx context.Context, pages []site.Page) (Annotations, error) {
	annotations := make(Annotations, len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var annotation Annotation
		if a.frequency != nil {
			annotation.Frequency = a.frequency(page)
		}
		if a.priority != nil {
			annotation.Priority = normalizePriority(a.priority(page))
		}
		annotations[page.ID] = annotation
	}

	return annotations, nil
}

func DefaultPriority(page site.Page) float64 {
	if page.IsHomePage {
		return 1.0
	}
	return normalizePriority(1.6 / float64(page.Depth+1))
}

// DefaultFrequency derives the frequency from the default priority, not from
// whatever priority function is configured.
func DefaultFrequency(page site.Page) Frequency {
	priority := DefaultPriority(page)

	switch {
	case priority == 1.0:
		return FrequencyDaily
	case priority >= 0.5:
		return FrequencyWeekly
	default:
		return FrequencyMonthly
	}
}

func normalizePriority(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return math.Round(p*10) / 10
}

func (r PriorityRule) resolve() PriorityFunc {
	switch r.Mode {
	case ModeDefault:
		return DefaultPriority
	case ModeCustom:
		return r.Func
	default:
		return nil
	}
}

func (r FrequencyRule) resolve() FrequencyFunc {
	switch r.Mode {
	case ModeDefault:
		return DefaultFrequency
	case ModeCustom:
		return r.Func
	default:
		return nil
	}
}
