package site

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedSource builds the page index from the site's own RSS/Atom feed: a home
// page plus one page per item that links below the base URL.
type FeedSource struct {
	feedURL   string
	template  string
	urls      *URLBuilder
	languages []Language
	parser    *gofeed.Parser
}

func NewFeedSource(feedURL, userAgent string, urls *URLBuilder, languages []Language, httpClient *http.Client) *FeedSource {
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	if httpClient != nil {
		parser.Client = httpClient
	}

	return &FeedSource{
		feedURL:   feedURL,
		template:  "article",
		urls:      urls,
		languages: languages,
		parser:    parser,
	}
}

func (s *FeedSource) Languages(ctx context.Context) ([]Language, error) {
	languages := make([]Language, len(s.languages))
	copy(languages, s.languages)
	return languages, nil
}

func (s *FeedSource) Pages(ctx context.Context) ([]Page, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", s.feedURL, err)
	}

	return s.pagesFromFeed(feed), nil
}

func (s *FeedSource) pagesFromFeed(feed *gofeed.Feed) []Page {
	code := ""
	if lang, ok := DefaultLanguage(s.languages); ok {
		code = lang.Code
	}

	home := Page{
		ID:         "home",
		Template:   "home",
		Visible:    true,
		IsHomePage: true,
		ModifiedAt: feedModified(feed),
		Contents:   map[string]bool{code: true},
	}
	if feed.Image != nil && feed.Image.URL != "" {
		home.Images = append(home.Images, Image{
			URL:  feed.Image.URL,
			Meta: map[string]ImageMeta{code: {Caption: feed.Image.Title}},
		})
	}

	pages := []Page{home}
	seen := map[string]bool{"": true}

	for _, item := range feed.Items {
		path, ok := s.urls.RelativePath(item.Link)
		if !ok || seen[path] {
			slog.Debug("Skipping feed item outside of site", "link", item.Link)
			continue
		}
		seen[path] = true

		page := Page{
			ID:       path,
			Path:     path,
			Template: s.template,
			Visible:  true,
			Depth:    strings.Count(path, "/") + 1,
			Contents: map[string]bool{code: true},
			Date:     item.PublishedParsed,
		}

		switch {
		case item.UpdatedParsed != nil:
			page.ModifiedAt = *item.UpdatedParsed
		case item.PublishedParsed != nil:
			page.ModifiedAt = *item.PublishedParsed
		default:
			page.ModifiedAt = home.ModifiedAt
		}

		if item.Image != nil && item.Image.URL != "" {
			page.Images = append(page.Images, Image{
				URL:  item.Image.URL,
				Meta: map[string]ImageMeta{code: {Caption: item.Image.Title, Alt: item.Title}},
			})
		}
		// gofeed already promotes the first image enclosure to item.Image
		for _, enclosure := range item.Enclosures {
			if enclosure == nil || enclosure.URL == "" || !strings.HasPrefix(enclosure.Type, "image/") {
				continue
			}
			if hasImage(page.Images, enclosure.URL) {
				continue
			}
			page.Images = append(page.Images, Image{
				URL:  enclosure.URL,
				Meta: map[string]ImageMeta{code: {Alt: item.Title}},
			})
		}

		pages = append(pages, page)
	}

	return pages
}

func hasImage(images []Image, url string) bool {
	for _, image := range images {
		if image.URL == url {
			return true
		}
	}
	return false
}

func feedModified(feed *gofeed.Feed) time.Time {
	switch {
	case feed.UpdatedParsed != nil:
		return *feed.UpdatedParsed
	case feed.PublishedParsed != nil:
		return *feed.PublishedParsed
	}

	var latest time.Time
	for _, item := range feed.Items {
		if item.PublishedParsed != nil && item.PublishedParsed.After(latest) {
			latest = *item.PublishedParsed
		}
	}
	return latest
}
