package sitemap

import (
	"context"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

var testModified = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func testLanguages(codes ...string) []site.Language {
	languages := make([]site.Language, 0, len(codes))
	for i, code := range codes {
		lang := site.Language{Code: code, URLPrefix: code}
		if i == 0 {
			lang.Default = true
			lang.URLPrefix = ""
		}
		languages = append(languages, lang)
	}
	return languages
}

func testPage(id string, depth int, codes ...string) site.Page {
	contents := make(map[string]bool, len(codes))
	for _, code := range codes {
		contents[code] = true
	}
	return site.Page{
		ID:         id,
		Path:       id,
		Template:   "default",
		Visible:    true,
		Depth:      depth,
		ModifiedAt: testModified,
		Contents:   contents,
	}
}

func testHome(codes ...string) site.Page {
	page := testPage("home", 0, codes...)
	page.Path = ""
	page.Template = "home"
	page.IsHomePage = true
	return page
}

type fakeSource struct {
	pages     []site.Page
	languages []site.Language
	err       error
	calls     int
}

func (s *fakeSource) Pages(ctx context.Context) ([]site.Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	pages := make([]site.Page, len(s.pages))
	copy(pages, s.pages)
	return pages, nil
}

func (s *fakeSource) Languages(ctx context.Context) ([]site.Language, error) {
	return s.languages, nil
}
