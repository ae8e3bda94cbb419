package sitemap

import (
	"github.com/lysyi3m/sitemap-comb/app/site"
)

type Selector struct {
	includeInvisible bool
	ignoredPages     map[string]bool
	ignoredTemplates map[string]bool
}

func NewSelector(options *Options) *Selector {
	s := &Selector{
		includeInvisible: options.IncludeInvisible,
		ignoredPages:     make(map[string]bool, len(options.IgnoredPages)),
		ignoredTemplates: make(map[string]bool, len(options.IgnoredTemplates)),
	}
	for _, id := range options.IgnoredPages {
		s.ignoredPages[id] = true
	}
	for _, name := range options.IgnoredTemplates {
		s.ignoredTemplates[name] = true
	}
	return s
}

// Run keeps the eligible pages in their original order.
func (s *Selector) Run(pages []site.Page) []site.Page {
	selected := make([]site.Page, 0, len(pages))
	for _, page := range pages {
		if !page.Visible && !s.includeInvisible {
			continue
		}
		if s.ignoredPages[page.ID] {
			continue
		}
		if s.ignoredTemplates[page.Template] {
			continue
		}
		selected = append(selected, page)
	}
	return selected
}
