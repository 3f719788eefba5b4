package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/learn/pkg/core"
)

var (
	distillForce bool
	distillJSON  bool
)

var distillCmd = &cobra.Command{
	Use:   "distill [note]",
	Short: "Extract facts, definitions, quotes and key points from a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		vault := openVault()
		record, err := vault.Service.Distill(ctx, resolveNote(ctx, vault, args[0]), distillForce)
		if err != nil {
			fatal("Failed to distill note", err)
		}

		if distillJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(record.Distilled); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		printDistilled(record.Distilled)
	},
}

func printDistilled(d core.DistilledContent) {
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Println(title + ":")
		for _, item := range items {
			fmt.Printf("  %s%s\n", settings.KeyPointsPrefix, item)
		}
		fmt.Println()
	}

	section("Key Points", d.KeyPoints)
	section("Facts", d.Facts)
	defs := make([]string, len(d.Definitions))
	for i, def := range d.Definitions {
		defs[i] = def.Term + ": " + def.Definition
	}
	section("Definitions", defs)
	section("Quotes", d.Quotes)
}

func init() {
	rootCmd.AddCommand(distillCmd)
	distillCmd.Flags().BoolVarP(&distillForce, "force", "f", false, "Redistill even if the note is unchanged")
	distillCmd.Flags().BoolVar(&distillJSON, "json", false, "Output in JSON format")
}
