package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twconfig"
)

const starterJS = `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: ['./view/**/*.templ', './**/*.templ'],
  theme: {
    extend: {}
  },
  daisyui: {
    themes: ['lemonade', 'forest']
  }
};
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--no-env"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeStarter(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tailwind.config.js")
	require.NoError(t, os.WriteFile(path, []byte(starterJS), 0644))
	return dir, path
}

func TestValidateCommand(t *testing.T) {
	_, path := writeStarter(t)

	out, _, err := run(t, "--config", path, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: "+path)
	assert.Contains(t, out, "content: 2 pattern(s)")
	assert.Contains(t, out, "plugin daisyui: themes lemonade, forest")

	t.Run("Invalid", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "tailwind.config.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"content": ["a"], "daisyui": {"themes": []}}`), 0644))

		_, _, err := run(t, "--config", bad, "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pluginOptions.daisyui.themes")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.js"), "validate")
		assert.ErrorIs(t, err, twconfig.ErrConfigNotFound)
	})

	t.Run("MissingFileWithOverrides", func(t *testing.T) {
		out, errOut, err := run(t,
			"--config", filepath.Join(t.TempDir(), "nope.js"),
			"--set", "content=./a/*.html",
			"validate",
		)
		require.NoError(t, err)
		assert.Contains(t, out, "content: 1 pattern(s)")
		assert.Contains(t, errOut, "using overrides only")
	})
}

func TestPrintCommand(t *testing.T) {
	_, path := writeStarter(t)

	t.Run("JSON", func(t *testing.T) {
		out, _, err := run(t, "--config", path, "print")
		require.NoError(t, err)

		cfg, err := twconfig.Load([]byte(out), twconfig.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, twconfig.Starter(), cfg)
	})

	t.Run("YAMLWithOverride", func(t *testing.T) {
		out, _, err := run(t, "--config", path, "--set", "pluginOptions.daisyui.themes=dark,light", "print", "-o", "yaml")
		require.NoError(t, err)

		cfg, err := twconfig.Load([]byte(out), twconfig.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, []string{"dark", "light"}, cfg.Themes("daisyui"))
	})

	t.Run("BadSet", func(t *testing.T) {
		_, _, err := run(t, "--config", path, "--set", "content", "print")
		assert.Error(t, err)
	})

	t.Run("BadOutput", func(t *testing.T) {
		_, _, err := run(t, "--config", path, "print", "-o", "xml")
		assert.ErrorIs(t, err, twconfig.ErrUnknownFormat)
	})
}

func TestConvertCommand(t *testing.T) {
	dir, path := writeStarter(t)
	dest := filepath.Join(dir, "tailwind.config.toml")

	out, _, err := run(t, "--config", path, "convert", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+dest)

	cfg, err := twconfig.LoadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, twconfig.Starter(), cfg)

	_, _, err = run(t, "--config", path, "convert", "--out", dest)
	assert.Error(t, err, "existing destination needs --force")

	_, _, err = run(t, "--config", path, "convert", "--out", dest, "--force")
	assert.NoError(t, err)

	_, _, err = run(t, "--config", path, "convert")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web", "tailwind.config.js")

	out, _, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := twconfig.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, twconfig.Starter(), cfg)

	_, _, err = run(t, "init", path)
	assert.Error(t, err)

	_, _, err = run(t, "init", path, "--force")
	assert.NoError(t, err)
}

func TestThemesCommand(t *testing.T) {
	_, path := writeStarter(t)

	out, _, err := run(t, "--config", path, "themes")
	require.NoError(t, err)
	assert.Equal(t, "lemonade (default)\nforest\n", out)

	_, _, err = run(t, "--config", path, "themes", "typography")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	dir, path := writeStarter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "view"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "view", "home.templ"), []byte("<div></div>"), 0644))

	out, _, err := run(t, "--config", path, "check", "--root", dir, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 1 file(s)")
	assert.Contains(t, out, "  view/home.templ")

	t.Run("Strict", func(t *testing.T) {
		_, errOut, err := run(t,
			"--config", path,
			"--set", "content=./view/**/*.templ,./missing/*.html",
			"check", "--root", dir, "--strict",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 content pattern(s)")
		assert.Contains(t, errOut, "./missing/*.html")
	})
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := run(t, "schema")
	require.NoError(t, err)
	assert.Equal(t, string(twconfig.SchemaJSON), out)
	assert.True(t, strings.Contains(out, "pluginOptions"))

	t.Run("YAML", func(t *testing.T) {
		out, _, err := run(t, "schema", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "required:\n- content\n")
		assert.Contains(t, out, "additionalProperties: false")
	})

	t.Run("BadOutput", func(t *testing.T) {
		_, _, err := run(t, "schema", "-o", "toml")
		assert.ErrorIs(t, err, twconfig.ErrUnknownFormat)
	})
}

func TestEnvFileFlag(t *testing.T) {
	dir, path := writeStarter(t)
	envFile := filepath.Join(dir, "build.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TWCONFIG_PLUGINOPTIONS_DAISYUI_THEMES=dark\n"), 0644))

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--config", path, "--env-file", envFile, "themes"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dark (default)\n", out.String())

	t.Run("NoEnvSkipsFile", func(t *testing.T) {
		out, _, err := run(t, "--config", path, "--env-file", envFile, "themes")
		require.NoError(t, err)
		assert.Equal(t, "lemonade (default)\nforest\n", out)
	})
}

func TestWatchCommandNeedsFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TWCONFIG_FILE", "")

	_, _, err := run(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}
