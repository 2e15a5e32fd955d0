package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/prompt"
)

var (
	// ErrNoSelection signals that nothing was eligible and the caller allowed skipping.
	ErrNoSelection = errors.New("no column selected")
	// ErrNoEligibleColumns is returned when nothing is eligible and a choice is required.
	ErrNoEligibleColumns = errors.New("no eligible columns")
)

// Filter narrows the eligible columns.
type Filter func(Column) bool

// MaxCategories keeps columns with at most n distinct values.
func MaxCategories(n int) Filter {
	return func(c Column) bool { return c.Distinct <= n }
}

// Eligible returns, in column order, the names of columns with the given
// category that pass every filter.
func Eligible(cls *Classification, cat Category, filters ...Filter) []string {
	var out []string
next:
	for _, c := range cls.Columns {
		if c.Category != cat {
			continue
		}
		for _, f := range filters {
			if !f(c) {
				continue next
			}
		}
		out = append(out, c.Name)
	}
	return out
}

// SelectOptions controls Select.
type SelectOptions struct {
	// Category is used in the prompt text.
	Category Category
	// AllowSkip turns an empty eligible set into ErrNoSelection.
	AllowSkip bool
}

// Select lists the eligible columns and asks until the operator names one of
// them. It returns ErrNoSelection or ErrNoEligibleColumns when eligible is
// empty, and the prompter's error (io.EOF, context cancellation) otherwise.
func Select(ctx context.Context, p prompt.Prompter, eligible []string, opt SelectOptions) (string, error) {
	if len(eligible) == 0 {
		if opt.AllowSkip {
			return "", ErrNoSelection
		}
		return "", fmt.Errorf("%w: %s", ErrNoEligibleColumns, opt.Category)
	}
	ok := make(map[string]bool, len(eligible))
	for _, n := range eligible {
		ok[n] = true
	}
	p.Printf("Available %s columns: %s\n", opt.Category, strings.Join(eligible, ", "))
	question := fmt.Sprintf("Please select a %s column: ", opt.Category)
	for {
		ans, err := p.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if ok[ans] {
			return ans, nil
		}
		p.Printf("✗ Invalid selection %q. Please try again.\n", ans)
	}
}
