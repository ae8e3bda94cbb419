package sitemap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/metrics"
	"github.com/lysyi3m/sitemap-comb/app/site"
)

type countingRecorder struct {
	outcomes []string
	urls     int
}

func (r *countingRecorder) ObserveBuildDuration(time.Duration) {}
func (r *countingRecorder) IncCacheResult(bool)                {}

func (r *countingRecorder) IncBuildOutcome(outcome metrics.BuildOutcome) {
	r.outcomes = append(r.outcomes, string(outcome))
}

func (r *countingRecorder) SetSitemapURLs(n int) {
	r.urls = n
}

func newTestGenerator(source site.Source, recorder *countingRecorder) *Generator {
	config := GeneratorConfig{
		URLs:              site.NewURLBuilder("https://example.com"),
		FallbackLanguages: testLanguages("en"),
	}
	if recorder != nil {
		config.Recorder = recorder
	}
	return NewGenerator(source, config)
}

func TestGeneratorRun(t *testing.T) {
	errorPage := testPage("error", 1, "en")
	errorPage.Template = "error"

	source := &fakeSource{
		pages:     []site.Page{testHome("en"), testPage("blog", 1, "en"), errorPage},
		languages: testLanguages("en"),
	}
	recorder := &countingRecorder{}

	options := DefaultOptions()
	options.IgnoredTemplates = []string{"error"}

	xml, err := newTestGenerator(source, recorder).Run(context.Background(), options)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(xml, "https://example.com/error") {
		t.Error("Pages with an ignored template should not be listed")
	}
	if !strings.Contains(xml, `href="https://example.com/sitemap.xsl"`) {
		t.Error("Expected default stylesheet url")
	}
	if recorder.urls != 2 {
		t.Errorf("Expected 2 urls recorded, got %d", recorder.urls)
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "success" {
		t.Errorf("Expected a success outcome, got %v", recorder.outcomes)
	}
}

func TestGeneratorFallbackLanguages(t *testing.T) {
	source := &fakeSource{pages: []site.Page{testHome("en")}}

	xml, err := newTestGenerator(source, nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(xml, "<loc>https://example.com/</loc>") {
		t.Errorf("Expected home page in the fallback language\n%s", xml)
	}
}

func TestGeneratorProcess(t *testing.T) {
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := testPage("first", 1, "en")
	first.Date = &older
	second := testPage("second", 1, "en")
	second.Date = &newer

	source := &fakeSource{pages: []site.Page{first, second}, languages: testLanguages("en")}

	options, err := ParseOptions([]byte("process: sort-by-date"), NewRegistry())
	if err != nil {
		t.Fatalf("Failed to parse options: %v", err)
	}

	xml, err := newTestGenerator(source, nil).Run(context.Background(), options)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Index(xml, "/second</loc>") > strings.Index(xml, "/first</loc>") {
		t.Error("Expected newest page first after processing")
	}
}

func TestGeneratorProcessResultError(t *testing.T) {
	source := &fakeSource{pages: []site.Page{testHome("en")}, languages: testLanguages("en")}
	recorder := &countingRecorder{}

	options := DefaultOptions()
	options.ProcessName = "broken"
	options.Process = func([]site.Page) []site.Page { return nil }

	xml, err := newTestGenerator(source, recorder).Run(context.Background(), options)

	var resultErr *ProcessResultTypeError
	if !errors.As(err, &resultErr) {
		t.Fatalf("Expected ProcessResultTypeError, got: %v", err)
	}
	if xml != "" {
		t.Error("No partial sitemap should be returned")
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0] != "config_error" {
		t.Errorf("Expected a config_error outcome, got %v", recorder.outcomes)
	}
}

func TestGeneratorSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("disk on fire"), languages: testLanguages("en")}

	_, err := newTestGenerator(source, nil).Run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Expected wrapped source error, got: %v", err)
	}
}

func TestGeneratorIdempotent(t *testing.T) {
	source := &fakeSource{
		pages:     []site.Page{testHome("en", "de"), testPage("blog", 1, "en", "de")},
		languages: testLanguages("en", "de"),
	}
	options := DefaultOptions()
	options.Priority = PriorityRule{Mode: ModeDefault}

	generator := newTestGenerator(source, nil)
	first, err := generator.Run(context.Background(), options)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := generator.Run(context.Background(), options)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if first != second {
		t.Error("Consecutive builds should be byte-identical")
	}
}
