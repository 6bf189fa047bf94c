// File: twconfig/builder.go
package twconfig

import (
	"errors"
	"fmt"
	"os"
)

// ValidatorFunc defines the signature for a function that can validate a loaded
// configuration. It runs after structural validation succeeded.
type ValidatorFunc func(cfg *BuildConfig) error

// Builder provides a fluent interface for loading a configuration from layered sources
type Builder struct {
	opts       LoadOptions
	defaults   *BuildConfig
	file       string
	format     Format
	args       []string
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder. Command-line overrides are
// off until WithArgs is called.
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		format:     FormatAuto,
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the configuration used as the lowest-precedence layer
func (b *Builder) WithDefaults(defaults *BuildConfig) *Builder {
	b.defaults = defaults
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the file format instead of detecting it
func (b *Builder) WithFormat(format Format) *Builder {
	if _, err := ParseFormat(string(format)); err != nil && b.err == nil {
		b.err = err
	}
	b.format = format
	return b
}

// WithArgs sets the command-line override arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithDotEnv adds dotenv files whose variables back the environment layer.
// The process environment still wins, and missing files are skipped.
func (b *Builder) WithDotEnv(paths ...string) *Builder {
	b.opts.EnvFiles = append(b.opts.EnvFiles, paths...)
	return b
}

// WithSources sets the precedence order for configuration sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// File returns the configuration file path the builder will read.
func (b *Builder) File() string {
	return b.file
}

// Build loads every source, merges them by precedence and validates the result.
// A missing configuration file is not fatal: when the remaining sources still
// form a valid configuration it is returned together with ErrConfigNotFound.
func (b *Builder) Build() (*BuildConfig, error) {
	if b.err != nil {
		return nil, b.err
	}

	layers := make(map[Source]map[string]any, len(b.opts.Sources))
	var loadErrors []error

	if b.defaults != nil {
		layers[SourceDefault] = b.defaults.ToMap()
	}

	if b.file != "" && b.hasSource(SourceFile) {
		doc, err := readDocument(b.file, b.format)
		switch {
		case err == nil:
			lifted, err := liftPluginBlocks(doc)
			if err != nil {
				return nil, fmt.Errorf("config file '%s': %w", b.file, err)
			}
			layers[SourceFile] = lifted
		case errors.Is(err, ErrConfigNotFound):
			loadErrors = append(loadErrors, err)
		default:
			return nil, err
		}
	}

	if len(b.args) > 0 && b.hasSource(SourceCLI) {
		parsed, err := parseArgs(b.args)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCLIParse, err)
		}
		lifted, err := liftPluginBlocks(dropForeignFlags(parsed))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCLIParse, err)
		}
		layers[SourceCLI] = lifted
	}

	if b.hasSource(SourceEnv) {
		dotenv, err := readDotEnv(b.opts.EnvFiles)
		if err != nil {
			return nil, err
		}
		// Env can only override paths known from lower-precedence layers.
		base := mergeMaps(layers[SourceDefault], layers[SourceFile])
		layers[SourceEnv] = envLayer(overridablePaths(base), b.opts, envLookup(dotenv))
	}

	// Process each source according to precedence (in reverse order for proper layering)
	merged := make(map[string]any)
	for i := len(b.opts.Sources) - 1; i >= 0; i-- {
		if layer, ok := layers[b.opts.Sources[i]]; ok {
			merged = mergeMaps(merged, layer)
		}
	}

	cfg, err := decodeDocument(merged)
	if err != nil {
		return nil, errors.Join(append(loadErrors, err)...)
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return cfg, errors.Join(loadErrors...)
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *BuildConfig {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

func (b *Builder) hasSource(s Source) bool {
	for _, src := range b.opts.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// Quick loads path with the default precedence, applying TWCONFIG_ environment
// overrides and the process arguments. Program flags that are not
// configuration paths, such as --verbose or --port 8080, are ignored.
func Quick(path string) (*BuildConfig, error) {
	return NewBuilder().
		WithFile(path).
		WithArgs(os.Args[1:]).
		Build()
}

// dropForeignFlags removes top-level command-line keys that belong to the
// host program rather than the configuration. A key is foreign when it is not
// a record field and its value is not a plugin option block.
func dropForeignFlags(parsed map[string]any) map[string]any {
	for key, value := range parsed {
		switch key {
		case keyContent, keyTheme, keyPluginOptions:
			continue
		}
		if _, isBlock := value.(map[string]any); !isBlock {
			delete(parsed, key)
		}
	}
	return parsed
}
