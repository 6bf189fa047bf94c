// File: twconfig/config.go
package twconfig

import (
	"maps"
	"slices"
	"sort"
)

// Record keys as they appear in configuration files.
const (
	keyContent       = "content"
	keyTheme         = "theme"
	keyExtend        = "extend"
	keyPluginOptions = "pluginOptions"
	keyThemes        = "themes"
)

// PluginDaisyUI is the plugin name used by the starter configuration.
const PluginDaisyUI = "daisyui"

// BuildConfig is the build configuration read by the CSS toolchain.
type BuildConfig struct {
	// Content lists glob patterns of source files scanned for class usage.
	// Order is preserved as declared.
	Content []string `config:"content"`

	// Theme holds design-token overrides.
	Theme Theme `config:"theme"`

	// Plugins maps a plugin name to its options. Nil when no plugin is configured.
	Plugins map[string]PluginOptions `config:"pluginOptions"`
}

// Theme carries the `theme` section. Only `extend` is recognised.
type Theme struct {
	// Extend maps a token category (colors, spacing, ...) to overrides.
	// Never nil on a loaded config.
	Extend map[string]any `config:"extend"`
}

// PluginOptions is the option block of a single plugin.
type PluginOptions struct {
	// Themes is the ordered list of selectable themes; the first is the default.
	Themes []string `config:"themes"`

	// Extra keeps option keys this package does not interpret.
	Extra map[string]any `config:",remain"`
}

// Starter returns the canonical configuration of a templ project styled with
// daisyUI, matching the file the project scaffold ships with.
func Starter() *BuildConfig {
	return &BuildConfig{
		Content: []string{"./view/**/*.templ", "./**/*.templ"},
		Theme:   Theme{Extend: map[string]any{}},
		Plugins: map[string]PluginOptions{
			PluginDaisyUI: {Themes: []string{"lemonade", "forest"}},
		},
	}
}

// Clone returns a deep copy of the configuration.
func (c *BuildConfig) Clone() *BuildConfig {
	if c == nil {
		return nil
	}

	clone := &BuildConfig{
		Content: slices.Clone(c.Content),
		Theme:   Theme{Extend: deepCopyMap(c.Theme.Extend)},
	}
	if clone.Theme.Extend == nil {
		clone.Theme.Extend = map[string]any{}
	}

	if c.Plugins != nil {
		clone.Plugins = make(map[string]PluginOptions, len(c.Plugins))
		for name, opts := range c.Plugins {
			clone.Plugins[name] = PluginOptions{
				Themes: slices.Clone(opts.Themes),
				Extra:  deepCopyMap(opts.Extra),
			}
		}
	}

	return clone
}

// PluginNames returns the configured plugin names in sorted order.
func (c *BuildConfig) PluginNames() []string {
	names := slices.Collect(maps.Keys(c.Plugins))
	sort.Strings(names)
	return names
}

// Themes returns a copy of the theme list declared for plugin.
func (c *BuildConfig) Themes(plugin string) []string {
	opts, ok := c.Plugins[plugin]
	if !ok {
		return nil
	}
	return slices.Clone(opts.Themes)
}

// DefaultTheme returns the first theme declared for plugin, or "" if the plugin
// declares none.
func (c *BuildConfig) DefaultTheme(plugin string) string {
	opts, ok := c.Plugins[plugin]
	if !ok || len(opts.Themes) == 0 {
		return ""
	}
	return opts.Themes[0]
}

// HasTheme reports whether plugin declares the named theme.
func (c *BuildConfig) HasTheme(plugin, name string) bool {
	opts, ok := c.Plugins[plugin]
	if !ok {
		return false
	}
	return slices.Contains(opts.Themes, name)
}

// ToMap converts the configuration into the nested map written to files.
// Empty plugin sections are omitted.
func (c *BuildConfig) ToMap() map[string]any {
	content := make([]any, len(c.Content))
	for i, p := range c.Content {
		content[i] = p
	}

	extend := deepCopyMap(c.Theme.Extend)
	if extend == nil {
		extend = map[string]any{}
	}

	out := map[string]any{
		keyContent: content,
		keyTheme:   map[string]any{keyExtend: extend},
	}

	if len(c.Plugins) > 0 {
		plugins := make(map[string]any, len(c.Plugins))
		for name, opts := range c.Plugins {
			block := deepCopyMap(opts.Extra)
			if block == nil {
				block = make(map[string]any)
			}
			if opts.Themes != nil {
				themes := make([]any, len(opts.Themes))
				for i, t := range opts.Themes {
					themes[i] = t
				}
				block[keyThemes] = themes
			}
			plugins[name] = block
		}
		out[keyPluginOptions] = plugins
	}

	return out
}
