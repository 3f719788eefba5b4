package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/learn/internal/platform"
	"github.com/aretw0/learn/pkg/adapters/lifecycle"
	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/tui"
)

var watchDistill bool

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Report notes as they change",
	Long: `Watch the vault and report every note that becomes stale. With
--distill, changed notes are distilled right away. When summarize_on_open
is set, the vault is summarized before watching starts.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		vault := openVault(platform.WithWatcherErrorHandler(func(err error) {
			slog.Warn("watcher error", "error", err)
		}))

		if settings.SummarizeOnOpen {
			summaries, err := vault.Service.Summarize(ctx)
			if err != nil {
				fatal("Failed to summarize notes", err)
			}
			fmt.Print(tui.RenderSummaries(summaries, settings.KeyPointsPrefix))
		}

		events, err := vault.Service.Watch(ctx, pattern)
		if err != nil {
			fatal("Failed to watch vault", err)
		}
		source := lifecycle.NewStaleSource(events, vault.Service.Check, func(e core.Event, err error) {
			slog.Debug("skipping event", "path", e.Path, "error", err)
		})
		if err := source.Start(ctx); err != nil {
			fatal("Failed to watch vault", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (ctrl+c to stop)\n", settings.Vault)

		for e := range source.Events() {
			stale, ok := e.(lifecycle.StaleEvent)
			if !ok {
				continue
			}
			fmt.Println(stale.String())
			if watchDistill && stale.Type != core.EventDelete {
				if _, err := vault.Service.Distill(ctx, stale.Path, false); err != nil {
					slog.Warn("distill failed", "path", stale.Path, "error", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchDistill, "distill", false, "Distill changed notes immediately")
}
