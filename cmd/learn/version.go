package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/learn"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of learn",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("learn version %s\n", learn.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
