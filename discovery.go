// FILE: twconfig/discovery.go
package twconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths, searched before the current directory
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config")
	CLIFlag string

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the conventional lookup for tailwind.config.*
func DefaultDiscoveryOptions() FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          "tailwind.config",
		Extensions:    []string{".js", ".cjs", ".mjs", ".json", ".yaml", ".yml", ".toml"},
		EnvVar:        DefaultEnvPrefix + "FILE",
		CLIFlag:       "--config",
		UseCurrentDir: true,
	}
}

// DiscoverFile returns the configuration file selected by opts, or "" when none
// is found. args are searched for the CLI flag.
func DiscoverFile(opts FileDiscoveryOptions, args []string) string {
	// Check CLI args first (highest priority)
	if opts.CLIFlag != "" {
		for i, arg := range args {
			if arg == opts.CLIFlag && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				return strings.TrimPrefix(arg, opts.CLIFlag+"=")
			}
		}
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	searchPaths := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}

	// No file found is not an error - overrides may still form a config
	return ""
}

// WithFileDiscovery enables automatic config file discovery. The CLI flag is
// looked up in the arguments passed to WithArgs, so call WithArgs first. The
// flag and its value are removed from the override arguments.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path := DiscoverFile(opts, b.args); path != "" {
		b.file = path
	}
	if opts.CLIFlag != "" {
		b.args = stripFlag(b.args, opts.CLIFlag)
	}
	return b
}

// stripFlag removes "flag value" and "flag=value" pairs from args.
func stripFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == flag {
			i++ // skip value
			continue
		}
		if strings.HasPrefix(args[i], flag+"=") {
			continue
		}
		out = append(out, args[i])
	}
	return out
}
