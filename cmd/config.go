package cmd

import (
	"fmt"
	"net/url"

	cfgpkg "github.com/KaramelBytes/edaloom-cli/internal/config"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set EdaLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "numeric_threshold: %d\n", c.NumericThreshold)
		fmt.Fprintf(out, "categorical_threshold: %d\n", c.CategoricalThreshold)
		fmt.Fprintf(out, "comparison_numeric_threshold: %d\n", c.ComparisonNumericThreshold)
		fmt.Fprintf(out, "comparison_categorical_threshold: %d\n", c.ComparisonCategoricalThreshold)
		fmt.Fprintf(out, "comparison_inclusive: %t\n", c.ComparisonInclusive)
		fmt.Fprintf(out, "normality_size_limit: %d\n", c.NormalitySizeLimit)
		fmt.Fprintf(out, "skew_threshold: %g\n", c.SkewThreshold)
		fmt.Fprintf(out, "alpha: %g\n", c.Alpha)
		fmt.Fprintf(out, "missing_drop_fraction: %g\n", c.MissingDropFraction)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", c.Sheet)
		}
		fmt.Fprintf(out, "plot_dir: %s\n", c.PlotDir)
		fmt.Fprintf(out, "plots_enabled: %t\n", c.PlotsEnabled)
		fmt.Fprintf(out, "stars_endpoint: %s\n", c.StarsEndpoint)
		fmt.Fprintf(out, "stars_model: %s\n", c.StarsModel)
		fmt.Fprintf(out, "stars_api_token: %s\n", mask(c.StarsAPIToken))
		fmt.Fprintf(out, "stars_timeout_sec: %d\n", c.StarsTimeoutSec)
		fmt.Fprintf(out, "stars_retry_max: %d\n", c.StarsRetryMax)
		fmt.Fprintf(out, "stars_rate_limit_rps: %g\n", c.StarsRateLimitRPS)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		if err := setKey(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	positiveInt := func(dst *int) error {
		i, err := cast.ToIntE(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	fraction := func(dst *float64) error {
		f, err := cast.ToFloat64E(val)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid value for %s: %v (want 0 < x < 1)", key, val)
		}
		*dst = f
		return nil
	}
	boolean := func(dst *bool) error {
		b, err := cast.ToBoolE(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		*dst = b
		return nil
	}
	switch key {
	case "numeric_threshold":
		return positiveInt(&c.NumericThreshold)
	case "categorical_threshold":
		return positiveInt(&c.CategoricalThreshold)
	case "comparison_numeric_threshold":
		return positiveInt(&c.ComparisonNumericThreshold)
	case "comparison_categorical_threshold":
		return positiveInt(&c.ComparisonCategoricalThreshold)
	case "comparison_inclusive":
		return boolean(&c.ComparisonInclusive)
	case "normality_size_limit":
		return positiveInt(&c.NormalitySizeLimit)
	case "skew_threshold":
		f, err := cast.ToFloat64E(val)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for skew_threshold: %v", val)
		}
		c.SkewThreshold = f
	case "alpha":
		return fraction(&c.Alpha)
	case "missing_drop_fraction":
		return fraction(&c.MissingDropFraction)
	case "delimiter":
		switch val {
		case ",", ";", "tab", "":
			c.Delimiter = val
		default:
			return fmt.Errorf("invalid delimiter: %s (use ',' ';' or tab)", val)
		}
	case "sheet":
		c.Sheet = val
	case "plot_dir":
		c.PlotDir = val
	case "plots_enabled":
		return boolean(&c.PlotsEnabled)
	case "stars_endpoint":
		u, err := url.Parse(val)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid stars_endpoint: %s", val)
		}
		c.StarsEndpoint = val
	case "stars_model":
		c.StarsModel = val
	case "stars_api_token":
		return fmt.Errorf("stars_api_token is not stored on disk; set EDALOOM_STARS_API_TOKEN in the environment or .env")
	case "stars_timeout_sec":
		return positiveInt(&c.StarsTimeoutSec)
	case "stars_retry_max":
		return positiveInt(&c.StarsRetryMax)
	case "stars_rate_limit_rps":
		f, err := cast.ToFloat64E(val)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for stars_rate_limit_rps: %v", val)
		}
		c.StarsRateLimitRPS = f
	case "log_level":
		switch val {
		case "debug", "info", "warn", "error":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
