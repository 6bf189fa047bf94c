// File: twconfig/encode.go
package twconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// jsHeader is the type annotation editors use for completion in config modules.
const jsHeader = "/** @type {import('tailwindcss').Config} */\n"

// Encode serializes cfg in the given format. FormatAuto encodes JSON.
func Encode(cfg *BuildConfig, format Format) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cannot encode nil configuration")
	}
	data := cfg.ToMap()

	switch format {
	case FormatJSON, FormatAuto, "":
		out, err := json.MarshalIndent(wholeFloats(data, jsonFloat), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		return append(out, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(wholeFloats(data, yamlFloat)); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to flush YAML encoder: %w", err)
		}
		return buf.Bytes(), nil

	case FormatTOML:
		// TOML has no null
		if path, ok := findNull(data, ""); ok {
			return nil, &ConfigurationError{Field: path, Message: "null values cannot be encoded as TOML"}
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(data); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		return buf.Bytes(), nil

	case FormatJS:
		body, err := json.MarshalIndent(wholeFloats(data, jsonFloat), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config data to JS: %w", err)
		}
		var buf bytes.Buffer
		buf.WriteString(jsHeader)
		buf.WriteString("module.exports = ")
		buf.Write(body)
		buf.WriteString(";\n")
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes cfg and atomically replaces the file at path. With
// FormatAuto the format follows the file extension, defaulting to JSON.
func WriteFile(path string, cfg *BuildConfig, format Format) error {
	if format == "" || format == FormatAuto {
		format = detectFileFormat(path)
		if format == "" {
			format = FormatJSON
		}
	}

	data, err := Encode(cfg, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
	}

	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file '%s': %w", path, err)
	}
	return nil
}

// wholeFloats returns a copy of v in which every float64 without a fractional
// part is replaced by wrap(f). Encoders otherwise write 1.0 as 1, which reads
// back as an integer.
func wholeFloats(v any, wrap func(float64) any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = wholeFloats(item, wrap)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = wholeFloats(item, wrap)
		}
		return out
	case float64:
		if !math.IsInf(val, 0) && val == math.Trunc(val) {
			return wrap(val)
		}
	}
	return v
}

// floatLiteral formats f so that it always carries a decimal point or an
// exponent.
func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func jsonFloat(f float64) any {
	return json.Number(floatLiteral(f))
}

func yamlFloat(f float64) any {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: floatLiteral(f)}
}

// findNull returns the dot path of the first nil value in v, visiting map
// keys in sorted order.
func findNull(v any, path string) (string, bool) {
	switch val := v.(type) {
	case nil:
		return path, true
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if p, ok := findNull(val[k], child); ok {
				return p, true
			}
		}
	case []any:
		for i, item := range val {
			if p, ok := findNull(item, fmt.Sprintf("%s[%d]", path, i)); ok {
				return p, true
			}
		}
	}
	return "", false
}
