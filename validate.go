// File: twconfig/validate.go
package twconfig

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// liftPluginBlocks moves top-level plugin blocks (`daisyui: {...}` next to
// `content`) under pluginOptions. Unknown top-level keys that are not mappings
// are rejected.
func liftPluginBlocks(doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	var plugins map[string]any

	if raw, ok := doc[keyPluginOptions]; ok && raw != nil {
		m, isMap := raw.(map[string]any)
		if !isMap {
			return nil, fieldError(keyPluginOptions, "must be a mapping of plugin name to options, got %s", typeName(raw))
		}
		plugins = deepCopyMap(m)
	}

	for key, value := range doc {
		switch key {
		case keyContent, keyTheme:
			out[key] = value
			continue
		case keyPluginOptions:
			continue
		}

		block, isMap := value.(map[string]any)
		if !isMap {
			return nil, fieldError(key, "unrecognized key (only content, theme, pluginOptions and plugin option blocks are allowed)")
		}
		if plugins == nil {
			plugins = make(map[string]any)
		}
		if _, dup := plugins[key]; dup {
			return nil, fieldError(key, "plugin options declared both at top level and under %s", keyPluginOptions)
		}
		plugins[key] = deepCopyMap(block)
	}

	if plugins != nil {
		out[keyPluginOptions] = plugins
	}
	return out, nil
}

// checkShape verifies the document structure field by field so errors name the
// exact offending field.
func checkShape(doc map[string]any) error {
	raw, ok := doc[keyContent]
	if !ok || raw == nil {
		return fieldError(keyContent, "is required")
	}
	if err := checkStringList(keyContent, raw, "glob pattern"); err != nil {
		return err
	}

	if raw, ok := doc[keyTheme]; ok && raw != nil {
		theme, isMap := raw.(map[string]any)
		if !isMap {
			return fieldError(keyTheme, "must be a mapping, got %s", typeName(raw))
		}
		for key, value := range theme {
			if key != keyExtend {
				return fieldError(keyTheme+"."+key, "unrecognized key (only %s is supported)", keyExtend)
			}
			if _, isMap := value.(map[string]any); value != nil && !isMap {
				return fieldError(keyTheme+"."+keyExtend, "must be a mapping of token category to overrides, got %s", typeName(value))
			}
		}
	}

	if raw, ok := doc[keyPluginOptions]; ok && raw != nil {
		plugins, isMap := raw.(map[string]any)
		if !isMap {
			return fieldError(keyPluginOptions, "must be a mapping, got %s", typeName(raw))
		}
		for name, value := range plugins {
			field := keyPluginOptions + "." + name
			block, isMap := value.(map[string]any)
			if !isMap {
				return fieldError(field, "must be a mapping, got %s", typeName(value))
			}
			if themes, ok := block[keyThemes]; ok {
				if err := checkStringList(field+"."+keyThemes, themes, "theme name"); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func checkStringList(field string, raw any, what string) error {
	list, isList := raw.([]any)
	if !isList {
		return fieldError(field, "must be a list of %ss, got %s", what, typeName(raw))
	}
	if len(list) == 0 {
		return fieldError(field, "must not be empty")
	}
	for i, item := range list {
		s, isString := item.(string)
		if !isString {
			return fieldError(fmt.Sprintf("%s[%d]", field, i), "must be a %s string, got %s", what, typeName(item))
		}
		if strings.TrimSpace(s) == "" {
			return fieldError(fmt.Sprintf("%s[%d]", field, i), "must not be blank")
		}
	}
	return nil
}

// Validate checks the invariants of a decoded configuration. Configurations
// built in code can be validated before they are encoded.
func (c *BuildConfig) Validate() error {
	if len(c.Content) == 0 {
		return fieldError(keyContent, "must not be empty")
	}
	for i, pattern := range c.Content {
		field := fmt.Sprintf("%s[%d]", keyContent, i)
		if strings.TrimSpace(pattern) == "" {
			return fieldError(field, "must not be blank")
		}
		if !doublestar.ValidatePattern(strings.TrimPrefix(pattern, "!")) {
			return fieldError(field, "invalid glob pattern %q", pattern)
		}
	}

	for _, name := range c.PluginNames() {
		if name == "" {
			return fieldError(keyPluginOptions, "plugin name must not be empty")
		}
		opts := c.Plugins[name]
		field := keyPluginOptions + "." + name + "." + keyThemes
		if opts.Themes != nil && len(opts.Themes) == 0 {
			return fieldError(field, "must not be empty")
		}
		seen := make(map[string]bool, len(opts.Themes))
		for i, theme := range opts.Themes {
			if strings.TrimSpace(theme) == "" {
				return fieldError(fmt.Sprintf("%s[%d]", field, i), "must not be blank")
			}
			if seen[theme] {
				return fieldError(fmt.Sprintf("%s[%d]", field, i), "duplicate theme %q", theme)
			}
			seen[theme] = true
		}
	}

	return nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
