package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"twconfig"
)

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := a.load()
			if err != nil {
				return err
			}

			if path == "" {
				path = "(overrides)"
			}
			fmt.Fprintf(a.out, "ok: %s\n", path)
			fmt.Fprintf(a.out, "  content: %d pattern(s)\n", len(cfg.Content))
			fmt.Fprintf(a.out, "  theme.extend: %d categor(ies)\n", len(cfg.Theme.Extend))
			for _, name := range cfg.PluginNames() {
				fmt.Fprintf(a.out, "  plugin %s: themes %s\n", name, strings.Join(cfg.Themes(name), ", "))
			}
			return nil
		},
	}
}

func (a *app) newPrintCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := twconfig.ParseFormat(output)
			if err != nil {
				return err
			}
			cfg, _, err := a.load()
			if err != nil {
				return err
			}
			data, err := twconfig.Encode(cfg, format)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: js, json, yaml, toml")
	return cmd
}

func (a *app) newConvertCmd() *cobra.Command {
	var (
		to      string
		outPath string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write the effective configuration to another file or format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return errors.New("--out is required")
			}
			format, err := twconfig.ParseFormat(to)
			if err != nil {
				return err
			}
			if !force {
				if _, err := os.Stat(outPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
				}
			}

			cfg, _, err := a.load()
			if err != nil {
				return err
			}
			if err := twconfig.WriteFile(outPath, cfg, format); err != nil {
				return err
			}

			a.logger.Info().Str("event", "config.written").Str("path", outPath).Msg("configuration written")
			fmt.Fprintf(a.out, "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "auto", "Output format (auto follows the --out extension)")
	cmd.Flags().StringVar(&outPath, "out", "", "Destination file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing destination")
	return cmd
}

func (a *app) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the starter configuration",
		Long: `Write the starter configuration: templ sources under ./view and the
project root, no theme extensions and the daisyUI themes lemonade and forest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "tailwind.config.js"
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			if err := twconfig.WriteFile(path, twconfig.Starter(), twconfig.FormatAuto); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func (a *app) newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes [plugin]",
		Short: "List the themes a plugin exposes (default: daisyui)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin := twconfig.PluginDaisyUI
			if len(args) == 1 {
				plugin = args[0]
			}

			cfg, _, err := a.load()
			if err != nil {
				return err
			}

			themes := cfg.Themes(plugin)
			if len(themes) == 0 {
				return fmt.Errorf("plugin %q declares no themes", plugin)
			}
			for i, theme := range themes {
				if i == 0 {
					fmt.Fprintf(a.out, "%s (default)\n", theme)
					continue
				}
				fmt.Fprintln(a.out, theme)
			}
			return nil
		},
	}
}

func (a *app) newCheckCmd() *cobra.Command {
	var (
		root   string
		strict bool
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Expand the content globs and report patterns that match nothing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.load()
			if err != nil {
				return err
			}

			report, err := cfg.ResolveContent(cmd.Context(), root)
			if err != nil {
				return err
			}

			for _, p := range report.Patterns {
				fmt.Fprintf(a.out, "%-40s %d file(s)\n", p.Pattern, len(p.Files))
			}
			fmt.Fprintf(a.out, "total: %d file(s)\n", len(report.Files))
			if list {
				for _, f := range report.Files {
					fmt.Fprintf(a.out, "  %s\n", f)
				}
			}

			unmatched := report.Unmatched()
			for _, p := range unmatched {
				a.logger.Warn().Str("event", "content.unmatched").Str("pattern", p).Msg("content pattern matches no files")
			}
			if strict && len(unmatched) > 0 {
				return fmt.Errorf("%d content pattern(s) match no files", len(unmatched))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Directory the content patterns are relative to")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a pattern matches no files")
	cmd.Flags().BoolVar(&list, "list", false, "List every matched file")
	return cmd
}

func (a *app) newSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the normalized configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "json":
				_, err := a.out.Write(twconfig.SchemaJSON)
				return err
			case "yaml":
				data, err := yaml.JSONToYAML(twconfig.SchemaJSON)
				if err != nil {
					return fmt.Errorf("convert schema to YAML: %w", err)
				}
				_, err = a.out.Write(data)
				return err
			default:
				return fmt.Errorf("%w: %q (schema output is json or yaml)", twconfig.ErrUnknownFormat, output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json, yaml")
	return cmd
}
