package platform

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aretw0/learn/pkg/adapters/fs"
	"github.com/aretw0/learn/pkg/adapters/llm"
	"github.com/aretw0/learn/pkg/distill"
)

// EnvPrefix prefixes every environment setting, e.g. LEARN_ENDPOINT.
const EnvPrefix = "LEARN"

// Settings is the user configuration of the CLI.
type Settings struct {
	Vault             string        `mapstructure:"vault"`
	DBFolder          string        `mapstructure:"db_folder"`
	Endpoint          string        `mapstructure:"endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Concurrency       int           `mapstructure:"concurrency"`
	AlwaysRedistill   bool          `mapstructure:"always_redistill"`
	Include           []string      `mapstructure:"include"`
	Exclude           []string      `mapstructure:"exclude"`
	// Versioning is "auto", "on" or "off".
	Versioning      string `mapstructure:"versioning"`
	SummarizeOnOpen bool   `mapstructure:"summarize_on_open"`
	KeyPointsPrefix string `mapstructure:"key_points_prefix"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// SetDefaults registers the default of every setting on v. A vault
// default registered earlier is kept.
func SetDefaults(v *viper.Viper) {
	if !v.IsSet("vault") {
		v.SetDefault("vault", ".")
	}
	v.SetDefault("db_folder", fs.DefaultDBFolder)
	v.SetDefault("endpoint", llm.DefaultBaseURL)
	v.SetDefault("api_key", "")
	v.SetDefault("model", llm.DefaultModel)
	v.SetDefault("temperature", llm.DefaultTemperature)
	v.SetDefault("max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("timeout", distill.DefaultTimeout)
	v.SetDefault("requests_per_minute", 0)
	v.SetDefault("concurrency", 4)
	v.SetDefault("always_redistill", false)
	v.SetDefault("include", []string{fs.DefaultInclude})
	v.SetDefault("exclude", []string{})
	v.SetDefault("versioning", "auto")
	v.SetDefault("summarize_on_open", false)
	v.SetDefault("key_points_prefix", "• ")
}

// LoadSettings resolves settings with precedence flags > LEARN_* environment
// > config file > defaults. Without an explicit file, config.yaml is looked
// up in the vault system folder and then in $HOME/.config/learn.
func LoadSettings(v *viper.Viper, configFile string) (Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(v.GetString("vault"), fs.DefaultSystemDir))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "learn"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	s.ConfigFile = v.ConfigFileUsed()
	return s, nil
}

// Completer builds the completion client described by the settings.
func (s Settings) Completer(logger *slog.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		BaseURL:           s.Endpoint,
		APIKey:            s.APIKey,
		Model:             s.Model,
		Temperature:       float32(s.Temperature),
		MaxTokens:         s.MaxTokens,
		RequestsPerMinute: s.RequestsPerMinute,
		Logger:            logger,
	})
}

// Options translates the settings into vault options.
func (s Settings) Options(logger *slog.Logger) []Option {
	opts := []Option{
		WithLogger(logger),
		WithCompleter(s.Completer(logger)),
		WithDBFolder(s.DBFolder),
		WithCompletionTimeout(s.Timeout),
		WithConcurrency(s.Concurrency),
		WithAlwaysRedistill(s.AlwaysRedistill),
		WithMustExist(true),
	}
	if len(s.Include) > 0 {
		opts = append(opts, WithInclude(s.Include...))
	}
	if len(s.Exclude) > 0 {
		opts = append(opts, WithExclude(s.Exclude...))
	}
	switch strings.ToLower(s.Versioning) {
	case "on", "true", "yes":
		opts = append(opts, WithVersioning(true))
	case "off", "false", "no":
		opts = append(opts, WithVersioning(false))
	}
	return opts
}
