// Package session drives the interactive menus over a loaded dataset.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
	"github.com/KaramelBytes/edaloom-cli/internal/prompt"
	"github.com/KaramelBytes/edaloom-cli/internal/sentiment"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Config carries the knobs every menu reads.
type Config struct {
	Inference          classify.Config
	Comparison         classify.Config
	NormalitySizeLimit int
	SkewThreshold      float64
	Alpha              float64
	DropFraction       float64
	Sentiment          sentiment.Config
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Inference:          classify.InferenceConfig(),
		Comparison:         classify.ComparisonConfig(),
		NormalitySizeLimit: 2000,
		SkewThreshold:      stats.DefaultSkewThreshold,
		Alpha:              0.05,
		DropFraction:       dataset.DefaultDropFraction,
	}
}

// Session is one interactive run over a dataset.
type Session struct {
	ID   string
	cfg  Config
	ds   *dataset.Dataset
	p    prompt.Prompter
	plot plot.Plotter
}

// New returns a session over ds. A nil plotter disables charts.
func New(ds *dataset.Dataset, p prompt.Prompter, pl plot.Plotter, cfg Config) *Session {
	if pl == nil {
		pl = plot.Discard{}
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = 0.05
	}
	return &Session{ID: uuid.NewString(), cfg: cfg, ds: ds, p: p, plot: pl}
}

// Open loads the dataset at path, asking for the path when it is empty.
func Open(ctx context.Context, p prompt.Prompter, path string, opt dataset.Options) (*dataset.Dataset, error) {
	if path == "" {
		var err error
		if path, err = p.Ask(ctx, "Please provide the file path to the CSV dataset: "); err != nil {
			return nil, err
		}
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	p.Printf("Data loaded successfully with %d rows and %d columns.\n", ds.Rows(), len(ds.Columns()))
	return ds, nil
}

type menuItem struct {
	label string
	run   func(context.Context) error
}

var heading = color.New(color.FgCyan, color.Bold)

// menu prints items plus a final leave entry and dispatches until the
// operator leaves. Action errors are reported and the menu is shown again;
// input exhaustion and cancellation end the loop.
func (s *Session) menu(ctx context.Context, title string, items []menuItem, leave string) error {
	n := len(items) + 1
	for {
		s.p.Printf("\n%s\n", heading.Sprintf("%s:", title))
		for i, it := range items {
			s.p.Printf("%d. %s\n", i+1, it.label)
		}
		s.p.Printf("%d. %s\n", n, leave)
		ans, err := s.p.Ask(ctx, fmt.Sprintf("Please select an option (1-%d): ", n))
		if err != nil {
			return err
		}
		choice, err := strconv.Atoi(ans)
		if err != nil || choice < 1 || choice > n {
			s.p.Printf("Invalid choice. Please try again.\n")
			continue
		}
		if choice == n {
			return nil
		}
		if err := items[choice-1].run(ctx); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return err
			}
			slog.Debug("menu action failed", "session", s.ID, "menu", title, "err", err)
			s.p.Printf("✗ %v\n", err)
		}
	}
}

// Run shows the main menu until the operator exits or input ends.
func (s *Session) Run(ctx context.Context) error {
	slog.Debug("session started", "session", s.ID, "dataset", s.ds.Name)
	err := s.menu(ctx, "Main Menu", []menuItem{
		{"Data Inspection", s.inspection},
		{"Statistical Analysis 1", s.analysis1},
		{"Statistical Analysis 2", s.analysis2},
		{"Sentiment Analysis", s.sentimentMenu},
	}, "Exit")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	s.p.Printf("Exiting the program.\n")
	return nil
}

// selectColumn wraps classify.Select with the session prompter.
func (s *Session) selectColumn(ctx context.Context, cls *classify.Classification, cat classify.Category, skip bool, filters ...classify.Filter) (string, error) {
	return classify.Select(ctx, s.p, classify.Eligible(cls, cat, filters...), classify.SelectOptions{Category: cat, AllowSkip: skip})
}

func (s *Session) notePlot(path string, err error) {
	switch {
	case err != nil:
		slog.Warn("plot failed", "session", s.ID, "err", err)
		s.p.Printf("⚠ Plot failed: %v\n", err)
	case path != "":
		s.p.Printf("✓ Saved plot: %s\n", path)
	}
}

func (s *Session) decision(r *stats.Result) string {
	if r.Reject(s.cfg.Alpha) {
		return fmt.Sprintf("Reject the null hypothesis at alpha=%g.", s.cfg.Alpha)
	}
	return fmt.Sprintf("Fail to reject the null hypothesis at alpha=%g.", s.cfg.Alpha)
}
