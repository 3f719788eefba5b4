package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the internal state of the vault components",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		vault := openVault()

		parts := vault.Components()
		names := make([]string, 0, len(parts))
		for name := range parts {
			names = append(names, name)
		}
		sort.Strings(names)

		type component struct {
			Type  string `json:"type"`
			State any    `json:"state"`
		}
		out := struct {
			Config     string      `json:"config,omitempty"`
			Components []component `json:"components"`
		}{Config: settings.ConfigFile}
		for _, name := range names {
			out.Components = append(out.Components, component{Type: name, State: parts[name].State()})
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
