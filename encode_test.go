// FILE: twconfig/encode_test.go
package twconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richConfig() *BuildConfig {
	cfg := Starter()
	cfg.Theme.Extend["colors"] = map[string]any{"brand": "#0f172a"}
	cfg.Theme.Extend["borderRadius"] = map[string]any{"box": "1rem"}
	cfg.Plugins[PluginDaisyUI] = PluginOptions{
		Themes: []string{"lemonade", "forest"},
		Extra:  map[string]any{"logs": false, "prefix": "dui-"},
	}
	return cfg
}

// numericConfig carries extend values whose kind must survive a round trip.
func numericConfig(withNull bool) *BuildConfig {
	cfg := Starter()
	cfg.Theme.Extend["zIndex"] = map[string]any{"modal": int64(3), "big": int64(1) << 40}
	cfg.Theme.Extend["opacity"] = map[string]any{"full": float64(1), "half": 0.5, "huge": 1e21}
	cfg.Theme.Extend["gridTemplate"] = []any{
		[]any{int64(1), int64(2)},
		[]any{"auto", "1fr"},
	}
	cfg.Theme.Extend["fontFamily"] = map[string]any{"sans": []any{"Inter's", `A"B`, "line\nbreak"}}
	if withNull {
		cfg.Theme.Extend["colors"] = nil
	}
	return cfg
}

func TestEncodeRoundTrip(t *testing.T) {
	configs := map[string]*BuildConfig{
		"Starter":  Starter(),
		"Rich":     richConfig(),
		"Numeric":  numericConfig(false),
		"WithNull": numericConfig(true),
	}

	for name, cfg := range configs {
		for _, format := range Formats {
			if name == "WithNull" && format == FormatTOML {
				continue
			}
			t.Run(name+"/"+string(format), func(t *testing.T) {
				data, err := Encode(cfg, format)
				require.NoError(t, err)

				got, err := Load(data, format)
				require.NoError(t, err, "encoded:\n%s", data)

				if diff := cmp.Diff(cfg, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestEncodeWholeFloats(t *testing.T) {
	cfg := Starter()
	cfg.Theme.Extend["opacity"] = map[string]any{"full": float64(1)}

	tests := map[Format]string{
		FormatJSON: `"full": 1.0`,
		FormatJS:   `"full": 1.0`,
		FormatYAML: "full: 1.0",
		FormatTOML: "full = 1.0",
	}
	for format, want := range tests {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(cfg, format)
			require.NoError(t, err)
			assert.Contains(t, string(data), want)
		})
	}
}

func TestEncodeTOMLRejectsNull(t *testing.T) {
	_, err := Encode(numericConfig(true), FormatTOML)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "theme.extend.colors", cfgErr.Field)

	t.Run("InsideList", func(t *testing.T) {
		cfg := Starter()
		cfg.Theme.Extend["spacing"] = []any{"1rem", nil}

		_, err := Encode(cfg, FormatTOML)
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "theme.extend.spacing[1]", cfgErr.Field)
	})
}

func TestEncodeShapes(t *testing.T) {
	t.Run("JS", func(t *testing.T) {
		data, err := Encode(Starter(), FormatJS)
		require.NoError(t, err)

		out := string(data)
		assert.True(t, strings.HasPrefix(out, jsHeader+"module.exports = {"))
		assert.True(t, strings.HasSuffix(out, "};\n"))
	})

	t.Run("AutoIsJSON", func(t *testing.T) {
		auto, err := Encode(Starter(), FormatAuto)
		require.NoError(t, err)
		jsonData, err := Encode(Starter(), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, jsonData, auto)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := Encode(nil, FormatJSON)
		assert.Error(t, err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := Encode(Starter(), Format("xml"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("FormatFromExtension", func(t *testing.T) {
		for _, name := range []string{"tailwind.config.js", "tailwind.config.json", "tailwind.config.yaml", "tailwind.config.toml"} {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, richConfig(), FormatAuto))

			got, err := LoadFile(path)
			require.NoError(t, err, name)
			if diff := cmp.Diff(richConfig(), got); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
			}
		}
	})

	t.Run("CreatesDirectoriesAndDefaultsToJSON", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "deeper", "twconfig")
		require.NoError(t, WriteFile(path, Starter(), FormatAuto))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{"))
	})

	t.Run("ReplacesExisting", func(t *testing.T) {
		path := filepath.Join(dir, "replace.json")
		require.NoError(t, WriteFile(path, Starter(), FormatJSON))

		cfg := Starter()
		cfg.Content = []string{"./web/**/*.templ"}
		require.NoError(t, WriteFile(path, cfg, FormatJSON))

		got, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"./web/**/*.templ"}, got.Content)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), ".replace.json"), "temp file left behind: %s", e.Name())
		}
	})
}
