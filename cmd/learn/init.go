package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/learn/internal/platform"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare a vault for learn",
	Long: `Create the system and sidecar folders in the vault and write a config
file with the current settings to <vault>/.learn/config.yaml.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := platform.Init(settings.Vault,
			platform.WithDBFolder(settings.DBFolder),
			platform.WithMustExist(true))
		if err != nil {
			fatal("Failed to initialize vault", err)
		}

		target := filepath.Join(repo.SystemPath(), "config.yaml")
		if err := v.SafeWriteConfigAs(target); err != nil {
			var exists viper.ConfigFileAlreadyExistsError
			if !errors.As(err, &exists) {
				fatal("Failed to write config", err)
			}
			fmt.Fprintf(os.Stderr, "keeping existing %s\n", target)
		}

		fmt.Printf("Initialized learn vault in %s (records in %s)\n", repo.Path, repo.DBPath())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
