package main

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aretw0/learn/internal/platform"
	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/quiz"
	"github.com/aretw0/learn/pkg/tui"
)

var quizForce bool

var quizCmd = &cobra.Command{
	Use:   "quiz [note]",
	Short: "Quiz yourself on a note",
	Long: `Distill the note if it changed since the last run, generate a fresh
question set and start an interactive quiz. The note can be given as a
path, a file name, a title or a fuzzy fragment of any of them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		vault := openVault()
		runQuiz(ctx, vault, resolveNote(ctx, vault, args[0]), quizForce)
	},
}

// runQuiz prepares the quiz for notePath and plays it in the terminal.
func runQuiz(ctx context.Context, vault *platform.Vault, notePath string, force bool) {
	result, err := vault.Service.PrepareQuiz(ctx, notePath, core.PrepareOptions{Force: force})
	if errors.Is(err, core.ErrBusy) {
		fatal("Quiz already in progress", err)
	}
	if err != nil {
		fatal("Failed to prepare quiz", err)
	}

	session, err := quiz.New(result.Questions)
	if err != nil {
		fatal("Invalid question set", err)
	}

	redistill := func(ctx context.Context) ([]core.Question, error) {
		res, err := vault.Service.Redistill(ctx, notePath)
		if err != nil {
			return nil, err
		}
		return res.Questions, nil
	}

	title := strings.TrimSuffix(path.Base(notePath), path.Ext(notePath))
	model := tui.NewQuizModel(ctx, title, session, redistill)

	notices.muted.Store(true)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	notices.muted.Store(false)
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fatal("Quiz view failed", err)
	}

	if results, ok := model.Results(); ok {
		for _, line := range results.Lines() {
			fmt.Println(line)
		}
	}
}

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().BoolVarP(&quizForce, "force", "f", false, "Redistill even if the note is unchanged")
}
