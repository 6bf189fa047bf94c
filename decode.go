// FILE: twconfig/decode.go
package twconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// parseDocument decodes raw bytes of the given concrete format into a
// normalized nested map. Numbers keep the kind their literal spells: 1 is an
// int64 and 1.0 a float64.
func parseDocument(data []byte, format Format) (map[string]any, error) {
	var raw any

	switch format {
	case FormatJSON:
		if err := decodeJSON(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", format, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJS:
		literal, err := extractJSObject(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JS module: %w", err)
		}
		converted, err := jsLiteralToJSON(literal)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JS object literal: %w", err)
		}
		if err := decodeJSON(converted, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JS object literal: %w", err)
		}
	case FormatTOML:
		table := make(map[string]any)
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		raw = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if raw == nil {
		// Empty document
		return map[string]any{}, nil
	}

	normalized, err := normalizeValue(raw)
	if err != nil {
		return nil, err
	}
	doc, ok := normalized.(map[string]any)
	if !ok {
		return nil, &ConfigurationError{Message: fmt.Sprintf("top-level value must be a mapping, got %s", typeName(normalized))}
	}
	return doc, nil
}

// decodeJSON decodes a single JSON value, keeping numbers as json.Number.
func decodeJSON(data []byte, v *any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve number precision
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document
			*v = nil
			return nil
		}
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// decodeDocument turns a parsed document into a validated BuildConfig.
func decodeDocument(doc map[string]any) (*BuildConfig, error) {
	lifted, err := liftPluginBlocks(doc)
	if err != nil {
		return nil, err
	}
	if err := checkShape(lifted); err != nil {
		return nil, err
	}
	if err := validateSchema(lifted); err != nil {
		return nil, err
	}

	cfg, err := decodeRecord(lifted)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeRecord decodes a shape-checked document into a BuildConfig.
func decodeRecord(doc map[string]any) (*BuildConfig, error) {
	var cfg BuildConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		TagName:     "config",
		ErrorUnused: true,
		ZeroFields:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, &ConfigurationError{Message: "record decode failed", Err: err}
	}

	if cfg.Theme.Extend == nil {
		cfg.Theme.Extend = map[string]any{}
	}
	if len(cfg.Plugins) == 0 {
		cfg.Plugins = nil
	}
	for name, opts := range cfg.Plugins {
		if len(opts.Extra) == 0 && opts.Extra != nil {
			opts.Extra = nil
			cfg.Plugins[name] = opts
		}
	}

	return &cfg, nil
}
