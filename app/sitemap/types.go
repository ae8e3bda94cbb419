package sitemap

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

const (
	NamespaceSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	NamespaceXHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceImage   = "http://www.google.com/schemas/sitemap-image/1.1"
)

type Frequency string

const (
	FrequencyAlways  Frequency = "always"
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyNever   Frequency = "never"
)

// Annotation holds the computed sitemap attributes of one page.
type Annotation struct {
	Priority  float64
	Frequency Frequency
}

// Annotations is keyed by page ID.
type Annotations map[string]Annotation

type (
	PriorityFunc  func(page site.Page) float64
	FrequencyFunc func(page site.Page) Frequency
	ProcessFunc   func(pages []site.Page) []site.Page
)

type Mode int

const (
	ModeOff Mode = iota
	ModeDefault
	ModeCustom
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeCustom:
		return "custom"
	default:
		return "off"
	}
}

type PriorityRule struct {
	Mode Mode
	Name string // Registry name of a custom function
	Func PriorityFunc
}

type FrequencyRule struct {
	Mode Mode
	Name string
	Func FrequencyFunc
}

func (r PriorityRule) Enabled() bool  { return r.Mode != ModeOff }
func (r FrequencyRule) Enabled() bool { return r.Mode != ModeOff }

// Options controls page selection, annotation and output of one build.
type Options struct {
	IncludeInvisible bool
	IgnoredPages     []string
	IgnoredTemplates []string
	Process          ProcessFunc
	ProcessName      string
	Priority         PriorityRule
	Frequency        FrequencyRule
	IncludeImages    bool
	ImagesLicense    string
}

func DefaultOptions() *Options {
	return &Options{
		IncludeImages: true,
	}
}

var ErrConfiguration = errors.New("invalid sitemap configuration")

// ConfigurationTypeError reports an option holding a value of the wrong type.
type ConfigurationTypeError struct {
	Option   string
	Expected string
}

func (e *ConfigurationTypeError) Error() string {
	return fmt.Sprintf("the option %q must be %s", e.Option, e.Expected)
}

func (e *ConfigurationTypeError) Is(target error) bool {
	return target == ErrConfiguration
}

// ConfigurationCallableError reports an override that is neither a boolean
// nor the name of a registered function.
type ConfigurationCallableError struct {
	Option string
	Value  string
}

func (e *ConfigurationCallableError) Error() string {
	return fmt.Sprintf("%s is not callable (option %q)", e.Value, e.Option)
}

func (e *ConfigurationCallableError) Is(target error) bool {
	return target == ErrConfiguration
}

type ProcessResultTypeError struct {
	Name string
}

func (e *ProcessResultTypeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("the option \"process\" must return a collection (%s returned none)", e.Name)
	}
	return `the option "process" must return a collection`
}

func (e *ProcessResultTypeError) Is(target error) bool {
	return target == ErrConfiguration
}
