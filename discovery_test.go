// FILE: twconfig/discovery_test.go
package twconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "tailwind.config.yaml")
	jsPath := filepath.Join(dir, "tailwind.config.js")
	require.NoError(t, os.WriteFile(yamlPath, []byte("content: [a]\n"), 0644))
	require.NoError(t, os.WriteFile(jsPath, []byte(starterJS), 0644))

	opts := DefaultDiscoveryOptions()
	opts.Paths = []string{dir}
	opts.UseCurrentDir = false
	opts.EnvVar = "TWDISC_FILE"

	t.Run("ExtensionOrder", func(t *testing.T) {
		assert.Equal(t, jsPath, DiscoverFile(opts, nil))
	})

	t.Run("CLIFlag", func(t *testing.T) {
		assert.Equal(t, "/etc/custom.toml", DiscoverFile(opts, []string{"--config", "/etc/custom.toml"}))
		assert.Equal(t, "/etc/custom.json", DiscoverFile(opts, []string{"--config=/etc/custom.json"}))
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("TWDISC_FILE", "/srv/tailwind.config.json")
		assert.Equal(t, "/srv/tailwind.config.json", DiscoverFile(opts, nil))
		assert.Equal(t, "/etc/custom.toml", DiscoverFile(opts, []string{"--config", "/etc/custom.toml"}), "flag beats env")
	})

	t.Run("NotFound", func(t *testing.T) {
		empty := opts
		empty.Paths = []string{t.TempDir()}
		assert.Empty(t, DiscoverFile(empty, nil))
	})

	t.Run("SkipsDirectories", func(t *testing.T) {
		other := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(other, "tailwind.config.js"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(other, "tailwind.config.json"), []byte(`{"content":["a"]}`), 0644))

		o := opts
		o.Paths = []string{other}
		assert.Equal(t, filepath.Join(other, "tailwind.config.json"), DiscoverFile(o, nil))
	})
}

func TestStripFlag(t *testing.T) {
	args := []string{"--config", "a.json", "--content=x", "--config=b.json", "--pluginOptions.daisyui.themes", "dark"}
	assert.Equal(t, []string{"--content=x", "--pluginOptions.daisyui.themes", "dark"}, stripFlag(args, "--config"))
}
