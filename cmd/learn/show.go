package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/learn/pkg/core"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [note]",
	Short: "Show the stored record of a note",
	Long:  `Print the sidecar of a note: its identifier, distilled content and last question set. Never calls the model.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		vault := openVault()
		notePath := resolveNote(ctx, vault, args[0])
		record, err := vault.Service.Record(ctx, notePath)
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "%s has not been distilled yet\n", notePath)
			os.Exit(1)
		}
		if err != nil {
			fatal("Failed to read record", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(record); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("id:      %s\n", record.ID)
		fmt.Printf("note:    %s\n", record.SourcePath)
		fmt.Printf("updated: %s\n", record.LastUpdated.Format(time.RFC3339))
		if reason, err := vault.Service.Check(ctx, notePath); err == nil && reason != "" {
			fmt.Printf("stale:   %s\n", reason)
		}
		fmt.Println()
		printDistilled(record.Distilled)
		fmt.Printf("%d questions\n", len(record.Quiz))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the raw sidecar as JSON")
}
