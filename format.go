// File: twconfig/format.go
package twconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file encoding.
type Format string

const (
	// FormatAuto detects the format from the file extension, then the content.
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	// FormatJS is a CommonJS or ES module exporting an object literal.
	FormatJS Format = "js"
)

// Formats lists the concrete formats in the order content detection tries them.
var Formats = []Format{FormatJS, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml", "tml":
		return FormatTOML, nil
	case "js", "cjs", "mjs", "javascript":
		return FormatJS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml", ".tml":
		return FormatTOML
	case ".js", ".cjs", ".mjs":
		return FormatJS
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) Format {
	if bytes.Contains(data, []byte("module.exports")) || bytes.Contains(data, []byte("export default")) {
		return FormatJS
	}

	// JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: key = value documents are also valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil && len(tomlTest) > 0 {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil && len(yamlTest) > 0 {
		return FormatYAML
	}

	return ""
}

// resolveFormat picks the format for data read from path.
func resolveFormat(hint Format, path string, data []byte) (Format, error) {
	if hint != "" && hint != FormatAuto {
		return hint, nil
	}
	if f := detectFileFormat(path); f != "" {
		return f, nil
	}
	if f := detectFormatFromContent(data); f != "" {
		return f, nil
	}
	if path == "" {
		return "", ErrUnknownFormat
	}
	return "", fmt.Errorf("%w: file '%s'", ErrUnknownFormat, path)
}
