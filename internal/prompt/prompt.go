package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter is the request/response port every interactive menu talks to.
type Prompter interface {
	// Ask writes question and returns the next trimmed input line.
	// It returns io.EOF once input is exhausted.
	Ask(ctx context.Context, question string) (string, error)
	// Printf writes operator-facing output.
	Printf(format string, args ...any)
}

// Console is a line-oriented Prompter over a reader and a writer.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole builds a Console; typical use is NewConsole(os.Stdin, os.Stdout).
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return "", io.EOF
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
