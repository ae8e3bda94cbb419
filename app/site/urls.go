package site

import (
	"net/url"
	"strings"
)

type URLBuilder struct {
	baseURL string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *URLBuilder) BaseURL() string {
	return b.baseURL
}

// Resolve turns a site relative path into an absolute URL. Absolute URLs are
// returned unchanged.
func (b *URLBuilder) Resolve(path string) string {
	if isAbsoluteURL(path) {
		return path
	}

	path = strings.Trim(path, "/")
	if path == "" {
		return b.baseURL + "/"
	}
	return b.baseURL + "/" + path
}

func (b *URLBuilder) PageURL(page Page, lang Language) string {
	parts := make([]string, 0, 2)
	if prefix := strings.Trim(lang.URLPrefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	if path := strings.Trim(page.Path, "/"); path != "" {
		parts = append(parts, path)
	}
	return b.Resolve(strings.Join(parts, "/"))
}

func (b *URLBuilder) ImageURL(image Image) string {
	if image.URL != "" {
		return b.Resolve(image.URL)
	}
	return b.Resolve(image.Path)
}

// RelativePath returns the path of rawURL below the base URL. The second
// result is false when rawURL points outside of the site.
func (b *URLBuilder) RelativePath(rawURL string) (string, bool) {
	base, err := url.Parse(b.baseURL)
	if err != nil {
		return "", false
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if target.Host != "" && !strings.EqualFold(target.Host, base.Host) {
		return "", false
	}

	basePath := strings.Trim(base.Path, "/")
	targetPath := strings.Trim(target.Path, "/")
	if basePath == "" {
		return targetPath, true
	}
	if targetPath == basePath {
		return "", true
	}
	if !strings.HasPrefix(targetPath, basePath+"/") {
		return "", false
	}
	return strings.TrimPrefix(targetPath, basePath+"/"), true
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}
