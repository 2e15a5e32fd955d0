package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	cfgpkg "github.com/KaramelBytes/edaloom-cli/internal/config"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/logging"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
	"github.com/KaramelBytes/edaloom-cli/internal/prompt"
	"github.com/KaramelBytes/edaloom-cli/internal/sentiment"
	"github.com/KaramelBytes/edaloom-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagPlotDir   string
	flagNoPlots   bool
	flagDelimiter string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "edaloom [file]",
	Short: "EdaLoom CLI: interactive exploratory data analysis for tabular files",
	Long: `EdaLoom loads a CSV, TSV or XLSX file and walks you through data inspection,
hypothesis tests and sentiment scoring of text columns from a menu.

Without a file argument it asks for the path first.`,
	Args: cobra.MaximumNArgs(1),
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runInteractive
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edaloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagPlotDir, "plot-dir", "", "directory for PNG charts (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoPlots, "no-plots", false, "do not write charts")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name (first sheet if omitted)")
}

// runInteractive loads the dataset and hands the terminal to the session menus.
func runInteractive(cmd *cobra.Command, args []string) error {
	c, err := settings()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := prompt.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	lopt, err := loadOptions(c)
	if err != nil {
		return err
	}
	ds, err := session.Open(ctx, p, path, lopt)
	if err != nil {
		return err
	}
	return session.New(ds, p, plotter(c), sessionConfig(c)).Run(ctx)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		logging.Init(debug, "")
		return
	}
	cfg = c
	applyOverrides(cfg)
	logging.Init(debug, cfg.LogLevel)
}

// settings returns the loaded configuration, loading it on first use.
func settings() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	applyOverrides(cfg)
	return cfg, nil
}

func applyOverrides(c *cfgpkg.Global) {
	f := rootCmd.PersistentFlags()
	if f.Changed("plot-dir") && flagPlotDir != "" {
		c.PlotDir = flagPlotDir
	}
	if f.Changed("no-plots") && flagNoPlots {
		c.PlotsEnabled = false
	}
	if f.Changed("delimiter") {
		c.Delimiter = flagDelimiter
	}
	if f.Changed("sheet") {
		c.Sheet = flagSheet
	}
}

func loadOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.Options{Sheet: c.Sheet}
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	return opt, nil
}

func plotter(c *cfgpkg.Global) plot.Plotter {
	if !c.PlotsEnabled {
		return plot.Discard{}
	}
	return plot.NewPNG(c.PlotDir)
}

func sentimentConfig(c *cfgpkg.Global) sentiment.Config {
	return sentiment.Config{
		StarsEndpoint: c.StarsEndpoint,
		StarsModel:    c.StarsModel,
		StarsAPIToken: c.StarsAPIToken,
		HTTPTimeout:   time.Duration(c.StarsTimeoutSec) * time.Second,
		RetryMax:      c.StarsRetryMax,
		RateLimitRPS:  c.StarsRateLimitRPS,
	}
}

func sessionConfig(c *cfgpkg.Global) session.Config {
	return session.Config{
		Inference: classify.Config{
			NumericThreshold:     c.NumericThreshold,
			CategoricalThreshold: c.CategoricalThreshold,
		},
		Comparison: classify.Config{
			NumericThreshold:     c.ComparisonNumericThreshold,
			CategoricalThreshold: c.ComparisonCategoricalThreshold,
			Inclusive:            c.ComparisonInclusive,
		},
		NormalitySizeLimit: c.NormalitySizeLimit,
		SkewThreshold:      c.SkewThreshold,
		Alpha:              c.Alpha,
		DropFraction:       c.MissingDropFraction,
		Sentiment:          sentimentConfig(c),
	}
}

// openDataset loads path with the configured reader options.
func openDataset(path string) (*dataset.Dataset, *cfgpkg.Global, error) {
	c, err := settings()
	if err != nil {
		return nil, nil, err
	}
	opt, err := loadOptions(c)
	if err != nil {
		return nil, nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, nil, err
	}
	return ds, c, nil
}
