package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	listStale bool
)

type listEntry struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	ID    string `json:"id,omitempty"`
	Stale string `json:"stale,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the notes of the vault",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		vault := openVault()
		notes, err := vault.Service.Notes(ctx)
		if err != nil {
			fatal("Error listing notes", err)
		}

		entries := make([]listEntry, 0, len(notes))
		for _, n := range notes {
			reason, err := vault.Service.Check(ctx, n.Path)
			if err != nil {
				fatal("Error checking "+n.Path, err)
			}
			if listStale && reason == "" {
				continue
			}
			entries = append(entries, listEntry{Path: n.Path, Title: n.Title, ID: n.ID, Stale: reason})
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(entries); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, e := range entries {
			mark := " "
			if e.Stale != "" {
				mark = "*"
			}
			fmt.Printf("%s %s - %s\n", mark, e.Path, e.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listStale, "stale", false, "Only notes that need distilling")
}
