package site

import (
	"testing"
)

func TestURLBuilderResolve(t *testing.T) {
	urls := NewURLBuilder("https://example.com/")

	tests := []struct {
		path string
		want string
	}{
		{"", "https://example.com/"},
		{"/", "https://example.com/"},
		{"blog/post", "https://example.com/blog/post"},
		{"/sitemap.xsl", "https://example.com/sitemap.xsl"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		if got := urls.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestURLBuilderPageURL(t *testing.T) {
	urls := NewURLBuilder("https://example.com")
	en := Language{Code: "en", Default: true}
	de := Language{Code: "de", URLPrefix: "de"}

	home := Page{ID: "home", Path: "", IsHomePage: true}
	post := Page{ID: "blog/post", Path: "blog/post"}

	if got := urls.PageURL(home, en); got != "https://example.com/" {
		t.Errorf("Unexpected home url: %s", got)
	}
	if got := urls.PageURL(home, de); got != "https://example.com/de" {
		t.Errorf("Unexpected localized home url: %s", got)
	}
	if got := urls.PageURL(post, de); got != "https://example.com/de/blog/post" {
		t.Errorf("Unexpected localized page url: %s", got)
	}
}

func TestURLBuilderRelativePath(t *testing.T) {
	urls := NewURLBuilder("https://example.com/site")

	tests := []struct {
		link string
		path string
		ok   bool
	}{
		{"https://example.com/site/blog/post/", "blog/post", true},
		{"https://example.com/site", "", true},
		{"/site/about", "about", true},
		{"https://example.com/other/page", "", false},
		{"https://elsewhere.org/site/page", "", false},
	}

	for _, tt := range tests {
		path, ok := urls.RelativePath(tt.link)
		if path != tt.path || ok != tt.ok {
			t.Errorf("RelativePath(%q) = (%q, %v), want (%q, %v)", tt.link, path, ok, tt.path, tt.ok)
		}
	}
}
