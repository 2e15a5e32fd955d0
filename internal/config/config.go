package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Column classification. The inference pair drives statistical analysis 1,
	// the comparison pair drives statistical analysis 2.
	NumericThreshold               int  `mapstructure:"numeric_threshold" yaml:"numeric_threshold"`
	CategoricalThreshold           int  `mapstructure:"categorical_threshold" yaml:"categorical_threshold"`
	ComparisonNumericThreshold     int  `mapstructure:"comparison_numeric_threshold" yaml:"comparison_numeric_threshold"`
	ComparisonCategoricalThreshold int  `mapstructure:"comparison_categorical_threshold" yaml:"comparison_categorical_threshold"`
	ComparisonInclusive            bool `mapstructure:"comparison_inclusive" yaml:"comparison_inclusive"`

	// Test dispatch
	NormalitySizeLimit  int     `mapstructure:"normality_size_limit" yaml:"normality_size_limit"`
	SkewThreshold       float64 `mapstructure:"skew_threshold" yaml:"skew_threshold"`
	Alpha               float64 `mapstructure:"alpha" yaml:"alpha"`
	MissingDropFraction float64 `mapstructure:"missing_drop_fraction" yaml:"missing_drop_fraction"`

	// Input
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`

	// Plots
	PlotDir      string `mapstructure:"plot_dir" yaml:"plot_dir"`
	PlotsEnabled bool   `mapstructure:"plots_enabled" yaml:"plots_enabled"`

	// Remote star-rating classifier
	StarsEndpoint     string  `mapstructure:"stars_endpoint" yaml:"stars_endpoint"`
	StarsModel        string  `mapstructure:"stars_model" yaml:"stars_model"`
	StarsAPIToken     string  `mapstructure:"stars_api_token" yaml:"stars_api_token"`
	StarsTimeoutSec   int     `mapstructure:"stars_timeout_sec" yaml:"stars_timeout_sec"`
	StarsRetryMax     int     `mapstructure:"stars_retry_max" yaml:"stars_retry_max"`
	StarsRateLimitRPS float64 `mapstructure:"stars_rate_limit_rps" yaml:"stars_rate_limit_rps"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.edaloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edaloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edaloom/config.yaml, creating the directory if necessary.
// The API token is never written; keep it in the environment or a .env file.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	cp := *c
	cp.StarsAPIToken = ""
	b, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.edaloom/config.yaml) > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDALOOM")
	v.AutomaticEnv()

	v.SetDefault("numeric_threshold", 20)
	v.SetDefault("categorical_threshold", 20)
	v.SetDefault("comparison_numeric_threshold", 10)
	v.SetDefault("comparison_categorical_threshold", 10)
	v.SetDefault("comparison_inclusive", true)
	v.SetDefault("normality_size_limit", 2000)
	v.SetDefault("skew_threshold", 1.0)
	v.SetDefault("alpha", 0.05)
	v.SetDefault("missing_drop_fraction", 0.5)
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("plots_enabled", true)
	v.SetDefault("plot_dir", "edaloom-plots")
	v.SetDefault("stars_endpoint", "https://api-inference.huggingface.co")
	v.SetDefault("stars_model", "nlptown/bert-base-multilingual-uncased-sentiment")
	v.SetDefault("stars_api_token", "")
	v.SetDefault("stars_timeout_sec", 30)
	v.SetDefault("stars_retry_max", 3)
	v.SetDefault("stars_rate_limit_rps", 5.0)
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
