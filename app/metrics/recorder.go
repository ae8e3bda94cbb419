package metrics

import "time"

// BuildOutcome enumerates sitemap build results for counters.
type BuildOutcome string

const (
	OutcomeSuccess       BuildOutcome = "success"
	OutcomeConfigError   BuildOutcome = "config_error"
	OutcomeSourceError   BuildOutcome = "source_error"
	OutcomeTimeout       BuildOutcome = "timeout"
	OutcomeInternalError BuildOutcome = "internal_error"
)

// Recorder defines observability hooks for sitemap builds and cache lookups.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	IncCacheResult(hit bool)
	SetSitemapURLs(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) IncCacheResult(bool)                {}
func (NoopRecorder) SetSitemapURLs(int)                 {}
