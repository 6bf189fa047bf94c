package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"twconfig"
	xlog "twconfig/internal/log"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	format     string
	envPrefix  string
	sets       []string
	envFiles   []string
	noEnv      bool
	logLevel   string
	logJSON    bool
}

type app struct {
	out    io.Writer
	errOut io.Writer
	opts   globalOptions
	logger zerolog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "twconfig",
		Short: "Inspect and maintain the CSS build configuration",
		Long: `twconfig loads the Tailwind build configuration (content globs, theme
extensions and plugin options such as the daisyUI theme list), validates it
and converts it between JS, JSON, YAML and TOML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			xlog.Configure(xlog.Config{
				Level:   a.opts.logLevel,
				Output:  a.errOut,
				Console: !a.opts.logJSON,
			})
			a.logger = xlog.WithComponent("cli")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "Path to the configuration file (default: discover tailwind.config.*)")
	flags.StringVar(&a.opts.format, "format", "auto", "Input format: auto, js, json, yaml, toml")
	flags.StringVar(&a.opts.envPrefix, "env-prefix", twconfig.DefaultEnvPrefix, "Prefix of environment overrides")
	flags.StringArrayVar(&a.opts.sets, "set", nil, "Override a field, e.g. --set content=./web/**/*.templ (repeatable)")
	flags.StringArrayVar(&a.opts.envFiles, "env-file", []string{".env"}, "Dotenv file backing environment overrides; missing files are skipped (repeatable)")
	flags.BoolVar(&a.opts.noEnv, "no-env", false, "Ignore environment overrides")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL or info")
	flags.BoolVar(&a.opts.logJSON, "log-json", false, "Emit logs as JSON lines")

	root.AddCommand(
		a.newValidateCmd(),
		a.newPrintCmd(),
		a.newConvertCmd(),
		a.newInitCmd(),
		a.newThemesCmd(),
		a.newCheckCmd(),
		a.newSchemaCmd(),
		a.newWatchCmd(),
	)

	return root
}

// configFile resolves the configuration file from the flag or discovery.
func (a *app) configFile() string {
	if a.opts.configPath != "" {
		return a.opts.configPath
	}
	return twconfig.DiscoverFile(twconfig.DefaultDiscoveryOptions(), nil)
}

// builder assembles the layered loader from the persistent flags.
func (a *app) builder() (*twconfig.Builder, error) {
	format, err := twconfig.ParseFormat(a.opts.format)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(a.opts.sets))
	for _, set := range a.opts.sets {
		if !strings.Contains(set, "=") {
			return nil, fmt.Errorf("invalid --set %q: expected path=value", set)
		}
		args = append(args, "--"+set)
	}

	sources := []twconfig.Source{twconfig.SourceCLI, twconfig.SourceEnv, twconfig.SourceFile}
	if a.opts.noEnv {
		sources = []twconfig.Source{twconfig.SourceCLI, twconfig.SourceFile}
	}

	return twconfig.NewBuilder().
		WithFile(a.configFile()).
		WithFormat(format).
		WithEnvPrefix(a.opts.envPrefix).
		WithArgs(args).
		WithDotEnv(a.opts.envFiles...).
		WithSources(sources...), nil
}

// load builds the configuration, logging a missing file instead of failing
// when overrides alone form a valid configuration.
func (a *app) load() (*twconfig.BuildConfig, string, error) {
	b, err := a.builder()
	if err != nil {
		return nil, "", err
	}

	cfg, err := b.Build()
	if err != nil {
		if cfg != nil && errors.Is(err, twconfig.ErrConfigNotFound) {
			a.logger.Warn().Err(err).Str("event", "config.file_missing").Msg("using overrides only")
			return cfg, b.File(), nil
		}
		if b.File() == "" {
			return nil, "", fmt.Errorf("no configuration file found (looked for tailwind.config.*): %w", err)
		}
		return nil, b.File(), err
	}

	a.logger.Debug().
		Str("event", "config.loaded").
		Str("path", b.File()).
		Int("patterns", len(cfg.Content)).
		Msg("configuration loaded")
	return cfg, b.File(), nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
