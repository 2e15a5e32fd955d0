package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/edaloom-cli/internal/sentiment"
)

// sentimentMenu scores one text column with an operator-chosen backend.
// It returns to the main menu after a single run.
func (s *Session) sentimentMenu(ctx context.Context) error {
	texts := s.ds.TextColumns()
	rows := make([][]string, len(texts))
	for i, t := range texts {
		rows[i] = []string{t.Name, strconv.FormatFloat(t.AvgLength, 'f', 2, 64), strconv.Itoa(t.Unique)}
	}
	s.p.Printf("\nText Columns in the Dataset:\n%s", table([]string{"Column", "Average Entry Length", "Unique Entries"}, rows))

	col, err := s.p.Ask(ctx, "Please enter the column name to analyze: ")
	if err != nil {
		return err
	}
	if !s.ds.Has(col) {
		s.p.Printf("Invalid column name.\n")
		return nil
	}
	if !s.ds.IsText(col) {
		s.p.Printf("Selected column is not a text column.\n")
		return nil
	}

	backends := sentiment.Backends()
	s.p.Printf("\nChoose the type of sentiment analysis:\n")
	for i, b := range backends {
		s.p.Printf("%d. %s\n", i+1, b.Title)
	}
	ans, err := s.p.Ask(ctx, fmt.Sprintf("Enter your choice (1-%d): ", len(backends)))
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(ans)
	if err != nil || n < 1 || n > len(backends) {
		s.p.Printf("Invalid choice. Please choose a number from 1 to %d.\n", len(backends))
		return nil
	}
	info := backends[n-1]
	b, err := sentiment.Get(info.Name, s.cfg.Sentiment)
	if err != nil {
		return s.unavailable(info, err)
	}
	values, _ := s.ds.NonMissingStrings(col)
	results, err := sentiment.AnalyzeAll(ctx, b, values)
	if err != nil {
		return s.unavailable(info, err)
	}
	s.p.Printf("%s", ResultsTable(results, info.Subjectivity))
	return nil
}

func (s *Session) unavailable(info sentiment.Info, err error) error {
	if !errors.Is(err, sentiment.ErrBackendUnavailable) {
		return err
	}
	s.p.Printf("⚠ %v\n", err)
	if info.Remote {
		s.p.Printf("  Set EDALOOM_STARS_API_TOKEN or point stars_endpoint at a reachable inference server, then try again.\n")
	}
	return nil
}

// ResultsTable renders scored texts; the subjectivity column is added for
// backends that report it.
func ResultsTable(results []sentiment.Result, subjectivity bool) string {
	header := []string{"Text", "Score", "Sentiment"}
	if subjectivity {
		header = append(header, "Subjectivity")
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		row := []string{truncate(r.Text, 60), strconv.FormatFloat(r.Score, 'f', 4, 64), string(r.Label)}
		if subjectivity {
			row = append(row, strconv.FormatFloat(r.Subjectivity, 'f', 4, 64))
		}
		rows[i] = row
	}
	return table(header, rows)
}
