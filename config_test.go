// FILE: twconfig/config_test.go
package twconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarter(t *testing.T) {
	cfg := Starter()

	assert.Equal(t, []string{"./view/**/*.templ", "./**/*.templ"}, cfg.Content)
	assert.NotNil(t, cfg.Theme.Extend)
	assert.Empty(t, cfg.Theme.Extend)
	assert.Equal(t, []string{"lemonade", "forest"}, cfg.Themes(PluginDaisyUI))
	require.NoError(t, cfg.Validate())
}

func TestClone(t *testing.T) {
	orig := Starter()
	orig.Theme.Extend["colors"] = map[string]any{"brand": "#0f172a"}
	orig.Plugins[PluginDaisyUI] = PluginOptions{
		Themes: []string{"lemonade", "forest"},
		Extra:  map[string]any{"logs": false},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Content[0] = "./web/**/*.templ"
	clone.Theme.Extend["colors"].(map[string]any)["brand"] = "#ffffff"
	clone.Plugins[PluginDaisyUI].Themes[0] = "dark"
	clone.Plugins[PluginDaisyUI].Extra["logs"] = true

	assert.Equal(t, "./view/**/*.templ", orig.Content[0])
	assert.Equal(t, "#0f172a", orig.Theme.Extend["colors"].(map[string]any)["brand"])
	assert.Equal(t, "lemonade", orig.Plugins[PluginDaisyUI].Themes[0])
	assert.Equal(t, false, orig.Plugins[PluginDaisyUI].Extra["logs"])

	var nilCfg *BuildConfig
	assert.Nil(t, nilCfg.Clone())
}

func TestThemeAccessors(t *testing.T) {
	cfg := Starter()
	cfg.Plugins["typography"] = PluginOptions{Extra: map[string]any{"className": "prose"}}

	t.Run("PluginNames", func(t *testing.T) {
		assert.Equal(t, []string{"daisyui", "typography"}, cfg.PluginNames())
	})

	t.Run("ThemesReturnsCopy", func(t *testing.T) {
		themes := cfg.Themes(PluginDaisyUI)
		themes[0] = "dark"
		assert.Equal(t, "lemonade", cfg.DefaultTheme(PluginDaisyUI))
	})

	t.Run("DefaultTheme", func(t *testing.T) {
		assert.Equal(t, "lemonade", cfg.DefaultTheme(PluginDaisyUI))
		assert.Empty(t, cfg.DefaultTheme("typography"))
		assert.Empty(t, cfg.DefaultTheme("missing"))
	})

	t.Run("HasTheme", func(t *testing.T) {
		assert.True(t, cfg.HasTheme(PluginDaisyUI, "forest"))
		assert.False(t, cfg.HasTheme(PluginDaisyUI, "dark"))
		assert.False(t, cfg.HasTheme("missing", "forest"))
	})

	t.Run("UnknownPlugin", func(t *testing.T) {
		assert.Nil(t, cfg.Themes("missing"))
	})
}

func TestToMap(t *testing.T) {
	t.Run("Starter", func(t *testing.T) {
		m := Starter().ToMap()

		assert.Equal(t, []any{"./view/**/*.templ", "./**/*.templ"}, m["content"])
		assert.Equal(t, map[string]any{"extend": map[string]any{}}, m["theme"])
		assert.Equal(t, map[string]any{
			"daisyui": map[string]any{"themes": []any{"lemonade", "forest"}},
		}, m["pluginOptions"])
	})

	t.Run("OmitsEmptyPlugins", func(t *testing.T) {
		cfg := &BuildConfig{Content: []string{"./src/**/*.html"}}
		m := cfg.ToMap()

		assert.NotContains(t, m, "pluginOptions")
		assert.Equal(t, map[string]any{"extend": map[string]any{}}, m["theme"])
	})

	t.Run("MergesExtraOptions", func(t *testing.T) {
		cfg := &BuildConfig{
			Content: []string{"a"},
			Plugins: map[string]PluginOptions{
				"daisyui": {Themes: []string{"dark"}, Extra: map[string]any{"logs": false}},
			},
		}
		block := cfg.ToMap()["pluginOptions"].(map[string]any)["daisyui"].(map[string]any)

		assert.Equal(t, []any{"dark"}, block["themes"])
		assert.Equal(t, false, block["logs"])
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *BuildConfig
		field string
	}{
		{"NoContent", &BuildConfig{}, "content"},
		{"BlankPattern", &BuildConfig{Content: []string{"a", "  "}}, "content[1]"},
		{"InvalidGlob", &BuildConfig{Content: []string{"./src/[a.html"}}, "content[0]"},
		{
			"EmptyThemes",
			&BuildConfig{Content: []string{"a"}, Plugins: map[string]PluginOptions{"daisyui": {Themes: []string{}}}},
			"pluginOptions.daisyui.themes",
		},
		{
			"DuplicateTheme",
			&BuildConfig{Content: []string{"a"}, Plugins: map[string]PluginOptions{"daisyui": {Themes: []string{"dark", "dark"}}}},
			"pluginOptions.daisyui.themes[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	t.Run("NegatedPattern", func(t *testing.T) {
		cfg := &BuildConfig{Content: []string{"./src/**/*.html", "!./src/vendor/**"}}
		assert.NoError(t, cfg.Validate())
	})
}
