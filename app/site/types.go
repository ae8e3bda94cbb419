package site

import (
	"context"
	"time"
)

type Source interface {
	Pages(ctx context.Context) ([]Page, error)
	Languages(ctx context.Context) ([]Language, error)
}

type Page struct {
	ID         string // Slash separated slugs, e.g. "blog/first-post"
	Path       string // URL path relative to the site root, empty for the home page
	Template   string // Intended template name
	Visible    bool
	Depth      int // Distance from the root, 0 for the home page
	IsHomePage bool
	ModifiedAt time.Time
	Date       *time.Time      // Explicit publish date, if the page has one
	Contents   map[string]bool // Language codes with existing content
	Images     []Image
}

// HasContent reports whether the page has content for the given language code.
func (p Page) HasContent(code string) bool {
	return p.Contents[code]
}

// LastModified prefers the publish date over the modification time.
func (p Page) LastModified() time.Time {
	if p.Date != nil && !p.Date.IsZero() {
		return *p.Date
	}
	return p.ModifiedAt
}

type Language struct {
	Code      string
	URLPrefix string // Empty for the default language
	Default   bool
}

type Image struct {
	Path string // Relative to the site root; ignored when URL is set
	URL  string
	Meta map[string]ImageMeta // Keyed by language code
}

type ImageMeta struct {
	Caption string
	Alt     string
}

// MetaFor returns the language specific metadata, empty when none exists.
func (i Image) MetaFor(code string) ImageMeta {
	return i.Meta[code]
}
