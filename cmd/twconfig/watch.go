package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"twconfig"
)

func (a *app) newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload and re-validate the configuration whenever the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.builder()
			if err != nil {
				return err
			}
			if b.File() == "" {
				return errors.New("watch needs a configuration file (use --config)")
			}

			initial, err := b.Build()
			if err != nil {
				return err
			}
			a.printSnapshot(initial)

			opts := twconfig.DefaultWatchOptions()
			opts.Debounce = debounce
			opts.Logger = &a.logger
			holder := twconfig.NewHolder(initial, b.File(), b.Build, opts)
			defer holder.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			updates, unsubscribe := holder.Subscribe()
			defer unsubscribe()

			if err := holder.StartWatcher(ctx); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					if errors.Is(ctx.Err(), context.Canceled) {
						return nil
					}
					return ctx.Err()
				case cfg, ok := <-updates:
					if !ok {
						return nil
					}
					a.printSnapshot(cfg)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", twconfig.DefaultDebounce, "Quiet period before reloading after a change")
	return cmd
}

func (a *app) printSnapshot(cfg *twconfig.BuildConfig) {
	fmt.Fprintf(a.out, "[%s] content=%s", time.Now().Format(time.TimeOnly), strings.Join(cfg.Content, ","))
	for _, name := range cfg.PluginNames() {
		fmt.Fprintf(a.out, " %s=%s", name, strings.Join(cfg.Themes(name), ","))
	}
	fmt.Fprintln(a.out)
}
