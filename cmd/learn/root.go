package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/learn/internal/platform"
)

var (
	verbose    bool
	configFile string
	settings   platform.Settings
	v          = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "learn",
	Short: "Turn Markdown notes into study quizzes",
	Long: `learn distills your Markdown notes with a local completion model and
quizzes you on them with flashcards, cloze deletions and multiple choice
questions. Results are cached in JSON sidecars next to your vault.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		if !cmd.Flags().Changed("vault") && os.Getenv(platform.EnvPrefix+"_VAULT") == "" {
			if wd, err := os.Getwd(); err == nil {
				if root, err := platform.FindRoot(wd); err == nil {
					v.SetDefault("vault", root)
				}
			}
		}

		s, err := platform.LoadSettings(v, configFile)
		if err != nil {
			fatal("Failed to load settings", err)
		}
		if abs, err := filepath.Abs(s.Vault); err == nil {
			s.Vault = abs
		}
		settings = s
		slog.Debug("settings loaded", "vault", s.Vault, "config", s.ConfigFile, "endpoint", s.Endpoint, "model", s.Model)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configFile, "config", "", "Config file (default: <vault>/.learn/config.yaml or ~/.config/learn/config.yaml)")
	flags.String("vault", "", "Vault directory (default: nearest folder with .learn, .obsidian or .git)")
	flags.String("endpoint", "", "OpenAI-compatible completion endpoint")
	flags.String("model", "", "Completion model name")
	flags.Duration("timeout", 0, "Completion timeout")
	flags.String("db-folder", "", "Sidecar folder inside the vault")

	for key, flag := range map[string]string{
		"vault":     "vault",
		"endpoint":  "endpoint",
		"model":     "model",
		"timeout":   "timeout",
		"db_folder": "db-folder",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}
