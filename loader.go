// FILE: twconfig/loader.go
package twconfig

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// MaxFileSize bounds configuration files read from disk.
const MaxFileSize int64 = 1 << 20

// Source represents a configuration source, used to define load precedence
type Source string

const (
	// SourceDefault represents values supplied through Builder.WithDefaults
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line arguments
	SourceCLI Source = "cli"
)

// DefaultEnvPrefix is prepended to environment variable names by default.
const DefaultEnvPrefix = "TWCONFIG_"

// EnvTransformFunc converts a configuration path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how configuration is loaded from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceFile, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "TWCONFIG_" transforms "content" to "TWCONFIG_CONTENT"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	// If nil, uses default transformation (dots to underscores, uppercase)
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all)
	EnvWhitelist map[string]bool

	// EnvFiles are dotenv files backing the environment layer. Variables set
	// in the process environment win, and an earlier file wins over a later
	// one. Missing files are skipped.
	EnvFiles []string
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources:   []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
		EnvPrefix: DefaultEnvPrefix,
	}
}

// Load parses data in the given format and returns the validated configuration.
// FormatAuto detects the format from the content.
func Load(data []byte, format Format) (*BuildConfig, error) {
	f, err := resolveFormat(format, "", data)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(data, f)
	if err != nil {
		return nil, err
	}
	return decodeDocument(doc)
}

// LoadReader reads r fully and loads it like Load.
func LoadReader(r io.Reader, format Format) (*BuildConfig, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("configuration exceeds maximum size %d bytes", MaxFileSize)
	}
	return Load(data, format)
}

// LoadFile reads and validates the configuration file at path. The format is
// taken from the extension, falling back to content detection.
func LoadFile(path string) (*BuildConfig, error) {
	doc, err := readDocument(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return cfg, nil
}

// readDocument reads and parses a configuration file without validating it.
func readDocument(path string, hint Format) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path '%s' is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format, err := resolveFormat(hint, path, data)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return doc, nil
}

// envLayer builds the environment override layer for the given known paths.
// lookup resolves a variable name, as os.LookupEnv does.
func envLayer(paths []string, opts LoadOptions, lookup func(string) (string, bool)) map[string]any {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	layer := make(map[string]any)
	for _, path := range paths {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}
		if value, exists := lookup(transform(path)); exists {
			setNestedValue(layer, path, coerceOverride(path, value))
		}
	}
	return layer
}

// readDotEnv reads the dotenv files in order. A variable keeps the value of
// the first file that defines it.
func readDotEnv(paths []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, path := range paths {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read dotenv file '%s': %w", path, err)
		}
		for name, value := range fileValues {
			if _, seen := values[name]; !seen {
				values[name] = value
			}
		}
	}
	return values, nil
}

// envLookup resolves variables from the process environment first and falls
// back to dotenv values.
func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if value, ok := os.LookupEnv(name); ok {
			return value, true
		}
		value, ok := dotenv[name]
		return value, ok
	}
}

// overridablePaths lists the paths environment variables may override: content,
// every plugin theme list and every existing theme.extend leaf.
func overridablePaths(base map[string]any) []string {
	seen := map[string]bool{keyContent: true}

	if plugins, ok := base[keyPluginOptions].(map[string]any); ok {
		for name := range plugins {
			seen[keyPluginOptions+"."+name+"."+keyThemes] = true
		}
	}
	if theme, ok := base[keyTheme].(map[string]any); ok {
		if extend, ok := theme[keyExtend].(map[string]any); ok {
			for path := range flattenMap(extend, keyTheme+"."+keyExtend) {
				seen[path] = true
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DiscoverEnv returns the environment variables that would override the given
// configuration, keyed by path.
func DiscoverEnv(cfg *BuildConfig, prefix string) map[string]string {
	transform := defaultEnvTransform(prefix)
	discovered := make(map[string]string)

	for _, path := range overridablePaths(cfg.ToMap()) {
		envVar := transform(path)
		if _, exists := os.LookupEnv(envVar); exists {
			discovered[path] = envVar
		}
	}
	return discovered
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ReplaceAll(env, "-", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// parseArgs processes command-line arguments into a nested override map.
// Accepts "--path=value" and "--path value"; a bare "--flag" sets true.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			keyPath = parts[0]
			valueStr = parts[1]
			i++
		} else {
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			return nil, fmt.Errorf("empty key in argument %q", arg)
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		setNestedValue(result, keyPath, coerceOverride(keyPath, valueStr))
	}

	return result, nil
}
