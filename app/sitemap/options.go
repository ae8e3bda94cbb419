package sitemap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	OptionIncludeInvisible = "include_invisible"
	OptionIgnoredPages     = "ignored_pages"
	OptionIgnoredTemplates = "ignored_templates"
	OptionProcess          = "process"
	OptionPriority         = "priority"
	OptionFrequency        = "frequency"
	OptionIncludeImages    = "include_images"
	OptionImagesLicense    = "images_license"
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
)

// OptionsLoader keeps the result of the last options file load, including a
// failed one, so requests can report the configuration error.
type OptionsLoader struct {
	path     string
	registry *Registry
	mu       sync.RWMutex
	options  *Options
	err      error
}

func NewOptionsLoader(path string, registry *Registry) *OptionsLoader {
	return &OptionsLoader{
		path:     path,
		registry: registry,
		options:  DefaultOptions(),
	}
}

func (l *OptionsLoader) Path() string {
	return l.path
}

// Load reads the options file. A missing file yields the defaults.
func (l *OptionsLoader) Load() (*Options, error) {
	options, err := l.read()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.options, l.err = options, err

	if err != nil {
		slog.Error("Sitemap options rejected", "path", l.path, "error", err)
		return nil, err
	}

	slog.Debug("Sitemap options loaded", "path", l.path,
		"priority", options.Priority.Mode.String(),
		"frequency", options.Frequency.Mode.String(),
		"ignored_pages", len(options.IgnoredPages),
		"ignored_templates", len(options.IgnoredTemplates))

	return options, nil
}

func (l *OptionsLoader) Get() (*Options, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.options, l.err
}

func (l *OptionsLoader) read() (*Options, error) {
	if l.path == "" {
		return DefaultOptions(), nil
	}

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultOptions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseOptions(data, l.registry)
}

// ParseOptions decodes and type checks a YAML options document.
func ParseOptions(data []byte, registry *Registry) (*Options, error) {
	options := DefaultOptions()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return options, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == tagNull {
		return options, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigurationTypeError{Option: "sitemap", Expected: "a mapping"}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]

		var err error
		switch key {
		case OptionIncludeInvisible:
			options.IncludeInvisible, err = decodeBool(key, value, false)
		case OptionIgnoredPages:
			options.IgnoredPages, err = decodeList(key, value)
		case OptionIgnoredTemplates:
			options.IgnoredTemplates, err = decodeList(key, value)
		case OptionProcess:
			options.ProcessName, options.Process, err = decodeProcess(key, value, registry)
		case OptionPriority:
			options.Priority, err = decodePriority(key, value, registry)
		case OptionFrequency:
			options.Frequency, err = decodeFrequency(key, value, registry)
		case OptionIncludeImages:
			options.IncludeImages, err = decodeBool(key, value, true)
		case OptionImagesLicense:
			options.ImagesLicense, err = decodeString(key, value)
		default:
			slog.Warn("Unknown sitemap option ignored", "option", key)
		}
		if err != nil {
			return nil, err
		}
	}

	return options, nil
}

func decodeBool(key string, node *yaml.Node, fallback bool) (bool, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == tagNull {
		return fallback, nil
	}
	if node.Kind != yaml.ScalarNode || node.ShortTag() != tagBool {
		return false, &ConfigurationTypeError{Option: key, Expected: "a boolean"}
	}

	var b bool
	if err := node.Decode(&b); err != nil {
		return false, &ConfigurationTypeError{Option: key, Expected: "a boolean"}
	}
	return b, nil
}

func decodeList(key string, node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == tagNull {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, &ConfigurationTypeError{Option: key, Expected: "an array"}
	}

	values := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, &ConfigurationTypeError{Option: key, Expected: "an array of strings"}
		}
		values = append(values, item.Value)
	}
	return values, nil
}

func decodeString(key string, node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == tagNull {
		return "", nil
	}
	if node.Kind != yaml.ScalarNode || node.ShortTag() != tagStr {
		return "", &ConfigurationTypeError{Option: key, Expected: "a string"}
	}
	return node.Value, nil
}

// decodeCallable interprets a boolean-or-function option. It returns the
// resolved mode and, for ModeCustom, the function name.
func decodeCallable(key string, node *yaml.Node) (Mode, string, error) {
	if node.Kind != yaml.ScalarNode {
		return ModeOff, "", &ConfigurationTypeError{Option: key, Expected: "a boolean or a function name"}
	}

	switch node.ShortTag() {
	case tagNull:
		return ModeOff, "", nil
	case tagBool:
		var b bool
		if err := node.Decode(&b); err != nil {
			return ModeOff, "", &ConfigurationTypeError{Option: key, Expected: "a boolean or a function name"}
		}
		if b {
			return ModeDefault, "", nil
		}
		return ModeOff, "", nil
	case tagStr:
		if node.Value == "" {
			return ModeOff, "", nil
		}
		return ModeCustom, node.Value, nil
	case tagInt, tagFloat:
		var f float64
		if err := node.Decode(&f); err == nil && f == 0 {
			return ModeOff, "", nil
		}
		return ModeOff, "", &ConfigurationCallableError{Option: key, Value: node.Value}
	default:
		return ModeOff, "", &ConfigurationCallableError{Option: key, Value: node.Value}
	}
}

func decodePriority(key string, node *yaml.Node, registry *Registry) (PriorityRule, error) {
	mode, name, err := decodeCallable(key, node)
	if err != nil || mode != ModeCustom {
		return PriorityRule{Mode: mode}, err
	}

	fn, ok := registry.Priority(name)
	if !ok {
		return PriorityRule{}, &ConfigurationCallableError{Option: key, Value: name}
	}
	return PriorityRule{Mode: ModeCustom, Name: name, Func: fn}, nil
}

func decodeFrequency(key string, node *yaml.Node, registry *Registry) (FrequencyRule, error) {
	mode, name, err := decodeCallable(key, node)
	if err != nil || mode != ModeCustom {
		return FrequencyRule{Mode: mode}, err
	}

	fn, ok := registry.Frequency(name)
	if !ok {
		return FrequencyRule{}, &ConfigurationCallableError{Option: key, Value: name}
	}
	return FrequencyRule{Mode: ModeCustom, Name: name, Func: fn}, nil
}

// decodeProcess accepts a function name; true has no default transform and is
// rejected like any other value that cannot be called.
func decodeProcess(key string, node *yaml.Node, registry *Registry) (string, ProcessFunc, error) {
	mode, name, err := decodeCallable(key, node)
	if err != nil {
		return "", nil, err
	}

	switch mode {
	case ModeOff:
		return "", nil, nil
	case ModeDefault:
		return "", nil, &ConfigurationCallableError{Option: key, Value: node.Value}
	}

	fn, ok := registry.Process(name)
	if !ok {
		return "", nil, &ConfigurationCallableError{Option: key, Value: name}
	}
	return name, fn, nil
}
