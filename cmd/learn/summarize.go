package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aretw0/learn/pkg/tui"
)

var summarizePlain bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Show the key points of every note",
	Long: `Distill every note that changed since its last run and list the key
points of all notes. Pick a note with enter to start its quiz.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		vault := openVault()
		summaries, err := vault.Service.Summarize(ctx)
		if err != nil {
			fatal("Failed to summarize notes", err)
		}

		if summarizePlain {
			fmt.Print(tui.RenderSummaries(summaries, settings.KeyPointsPrefix))
			return
		}

		model := tui.NewSummaryModel(summaries, settings.KeyPointsPrefix)
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
			fatal("Summary view failed", err)
		}
		if selected := model.Selected(); selected != "" {
			runQuiz(ctx, vault, selected, false)
		}
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizePlain, "plain", false, "Print summaries without the interactive view")
}
