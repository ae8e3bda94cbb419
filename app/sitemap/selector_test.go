package sitemap

import (
	"testing"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

func pageIDs(pages []site.Page) []string {
	ids := make([]string, len(pages))
	for i, page := range pages {
		ids[i] = page.ID
	}
	return ids
}

func TestSelectorSkipsInvisiblePages(t *testing.T) {
	hidden := testPage("drafts", 1, "en")
	hidden.Visible = false

	pages := NewSelector(DefaultOptions()).Run([]site.Page{testHome("en"), hidden, testPage("blog", 1, "en")})

	ids := pageIDs(pages)
	if len(ids) != 2 || ids[0] != "home" || ids[1] != "blog" {
		t.Errorf("Expected [home blog], got %v", ids)
	}
}

func TestSelectorIncludeInvisible(t *testing.T) {
	hidden := testPage("drafts", 1, "en")
	hidden.Visible = false

	options := DefaultOptions()
	options.IncludeInvisible = true

	pages := NewSelector(options).Run([]site.Page{testHome("en"), hidden})
	if len(pages) != 2 {
		t.Errorf("Expected invisible page to be included, got %v", pageIDs(pages))
	}
}

func TestSelectorIgnoredPages(t *testing.T) {
	options := DefaultOptions()
	options.IgnoredPages = []string{"blog/old", "missing"}

	pages := NewSelector(options).Run([]site.Page{
		testPage("blog", 1, "en"),
		testPage("blog/old", 2, "en"),
		testPage("blog/new", 2, "en"),
	})

	ids := pageIDs(pages)
	if len(ids) != 2 || ids[0] != "blog" || ids[1] != "blog/new" {
		t.Errorf("Expected [blog blog/new], got %v", ids)
	}
}

func TestSelectorIgnoredTemplatesWinOverVisibility(t *testing.T) {
	visibleError := testPage("error", 1, "en")
	visibleError.Template = "error"
	hiddenError := testPage("gone", 1, "en")
	hiddenError.Template = "error"
	hiddenError.Visible = false

	options := DefaultOptions()
	options.IncludeInvisible = true
	options.IgnoredTemplates = []string{"error"}

	pages := NewSelector(options).Run([]site.Page{testHome("en"), visibleError, hiddenError})

	for _, page := range pages {
		if page.Template == "error" {
			t.Errorf("Page %s with template 'error' should be excluded", page.ID)
		}
	}
	if len(pages) != 1 {
		t.Errorf("Expected only the home page, got %v", pageIDs(pages))
	}
}

func TestSelectorKeepsInputUntouched(t *testing.T) {
	input := []site.Page{testPage("a", 1, "en"), testPage("b", 1, "en")}

	options := DefaultOptions()
	options.IgnoredPages = []string{"a"}
	NewSelector(options).Run(input)

	if input[0].ID != "a" || input[1].ID != "b" {
		t.Errorf("Input slice should not be modified, got %v", pageIDs(input))
	}
}
