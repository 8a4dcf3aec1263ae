package errors

import "sync"

// Registry maps error codes to their remediation suggestions.
type Registry struct {
	mu          sync.RWMutex
	suggestions map[string][]string
}

// NewRegistry creates an empty suggestion registry.
func NewRegistry() *Registry {
	return &Registry{suggestions: make(map[string][]string)}
}

// Register adds a suggestion for an error code.
func (r *Registry) Register(code string, texts ...string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions[code] = append(r.suggestions[code], texts...)
	return r
}

// Get returns a copy of the suggestions registered for code.
func (r *Registry) Get(code string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.suggestions[code]
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// HasSuggestions reports whether any suggestion is registered for code.
func (r *Registry) HasSuggestions(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.suggestions[code]) > 0
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the process-wide registry used by the constructors.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// GetSuggestions returns the default suggestions for code.
func GetSuggestions(code string) []string {
	return defaultRegistry.Get(code)
}

// AttachSuggestions appends the registered suggestions for err.Code, skipping
// any the error already carries.
func AttachSuggestions(err *ChartError) *ChartError {
	if err == nil {
		return nil
	}
	seen := make(map[string]bool, len(err.Suggestions))
	for _, s := range err.Suggestions {
		seen[s] = true
	}
	for _, s := range defaultRegistry.Get(err.Code) {
		if !seen[s] {
			err.Suggestions = append(err.Suggestions, s)
		}
	}
	return err
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ErrConfigNotFound,
		"Run 'tempchart --init' to create a default config.yaml",
		"Or pass an explicit path with --config")
	r.Register(ErrConfigParseFailed,
		"Check the YAML syntax (indentation must use spaces, not tabs)",
		"Regenerate a clean file with 'tempchart --init' and copy your changes over")
	r.Register(ErrConfigInvalid,
		"Review the reported field and value against the documented options")
	r.Register(ErrConfigWriteFailed,
		"Check that the config directory is writable")

	r.Register(ErrChartInvalidConfig,
		"max_temp must be greater than min_temp and step_temp must be positive",
		"page_width must leave room for both title columns and at least one day column")
	r.Register(ErrChartUnknownPreset,
		"Available presets: wide, compact")
	r.Register(ErrChartNoSamples,
		"day_count must be at least 1")

	r.Register(ErrRenderUnknownFormat,
		"Supported formats: pdf, svg, png")

	r.Register(ErrOutputDirCreateFailed,
		"Check that the downloads directory exists and is writable",
		"Override the location with --out or TEMPCHART_OUTPUT_ROOT")
	r.Register(ErrOutputWriteFailed,
		"Check available disk space and file permissions",
		"Close any viewer that holds the previous chart open")
	r.Register(ErrOutputRootUnknown,
		"Set TEMPCHART_OUTPUT_ROOT or pass --out")

	r.Register(ErrStorageConnectFailed,
		"Verify storage.endpoint and the access credentials")
	r.Register(ErrStorageBucketFailed,
		"Verify the bucket name and that the credentials may create buckets")
	r.Register(ErrStorageUploadFailed,
		"The local file was still written; retry the upload by generating again")

	r.Register(ErrCommandNotFound,
		"Type /help to list available commands")
	r.Register(ErrCommandMissingArgs,
		"Type /help to see the command usage")

	r.Register(ErrServerStartFailed,
		"Another process may be using the port; change server.port in config.yaml")

	return r
}
