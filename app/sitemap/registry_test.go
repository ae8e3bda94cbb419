package sitemap

import (
	"testing"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

func TestRegistryBuiltins(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Priority("default"); !ok {
		t.Error("Expected default priority function")
	}
	if _, ok := registry.Frequency("default"); !ok {
		t.Error("Expected default frequency function")
	}
	for _, name := range []string{"drop-future", "sort-by-date"} {
		if _, ok := registry.Process(name); !ok {
			t.Errorf("Expected process function %s", name)
		}
	}
	if _, ok := registry.Process("missing"); ok {
		t.Error("Unknown names should not resolve")
	}
}

func TestRegistryIgnoresNilFunctions(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterProcess("nothing", nil)

	if _, ok := registry.Process("nothing"); ok {
		t.Error("A nil function should not resolve")
	}
}

func TestDropFuture(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	published := testPage("published", 1, "en")
	published.Date = &past
	scheduled := testPage("scheduled", 1, "en")
	scheduled.Date = &future
	undated := testPage("undated", 1, "en")

	pages := DropFuture(func() time.Time { return now })([]site.Page{published, scheduled, undated})

	ids := pageIDs(pages)
	if len(ids) != 2 || ids[0] != "published" || ids[1] != "undated" {
		t.Errorf("Expected [published undated], got %v", ids)
	}
}

func TestSortByDate(t *testing.T) {
	early := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := testPage("a", 1, "en")
	b := testPage("b", 1, "en")
	b.Date = &early
	c := testPage("c", 1, "en")
	c.Date = &late
	d := testPage("d", 1, "en")

	input := []site.Page{a, b, c, d}
	ids := pageIDs(SortByDate(input))

	expected := []string{"c", "b", "a", "d"}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Fatalf("Expected %v, got %v", expected, ids)
		}
	}
	if input[0].ID != "a" {
		t.Error("SortByDate should not reorder its input")
	}
}
