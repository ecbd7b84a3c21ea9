// Package prompt implements the interactive console protocol: single-line
// questions, constrained choices, and blank-line-terminated lists.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/model"
	"golang.org/x/term"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// ErrNoInput is returned when stdin closes while an answer is required.
var ErrNoInput = errors.New("input closed")

// LineValidator decides whether line may join the lines accepted so far.
type LineValidator func(line string, accepted []string) error

// Console reads operator answers from in and writes prompts to out.
type Console struct {
	in   *bufio.Reader
	out  io.Writer
	log  zerolog.Logger
	bold bool
}

// NewConsole creates a Console. Prompts are bold when out is a terminal.
func NewConsole(in io.Reader, out io.Writer, log zerolog.Logger) *Console {
	c := &Console{in: bufio.NewReader(in), out: out, log: log}
	if f, ok := out.(*os.File); ok {
		c.bold = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// Out is where prompts and operator-facing output are written.
func (c *Console) Out() io.Writer { return c.out }

// Printf writes operator-facing output.
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) emphasize(s string) string {
	if !c.bold {
		return s
	}
	return ansiBold + s + ansiReset
}

// ReadLine returns the next trimmed line. The last line may lack a newline;
// after that io.EOF is returned.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints label and returns the trimmed answer. A closed input counts
// as an empty answer.
func (c *Console) Ask(label string) (string, error) {
	c.Printf("%s ", c.emphasize(label))
	line, err := c.ReadLine()
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return line, err
}

// Heading prints a list prompt and its "empty line to finish" hint.
func (c *Console) Heading(title string) {
	c.Printf("\n%s\n", c.emphasize(title))
	c.Printf("Press <ENTER> on an empty line to finish.\n")
}

// Collect reads lines until a blank line (or end of input). A line that
// validate rejects is discarded with errMsg, formatted with the line, and
// the operator keeps typing. A nil validate accepts everything.
func (c *Console) Collect(validate LineValidator, errMsg string) ([]string, error) {
	var accepted []string
	for {
		line, err := c.ReadLine()
		if errors.Is(err, io.EOF) {
			return accepted, nil
		}
		if err != nil {
			return accepted, err
		}
		if line == "" {
			return accepted, nil
		}
		if validate != nil {
			if verr := validate(line, accepted); verr != nil {
				c.log.Warn().
					Str("code", string(diag.CodeInvalidInput)).
					Str("reason", verr.Error()).
					Msgf(errMsg, line)
				continue
			}
		}
		accepted = append(accepted, line)
	}
}

// Choose repeats question until the answer is one of options
// (case-insensitive) and returns it lower-cased.
func (c *Console) Choose(question string, options ...string) (string, error) {
	for {
		c.Printf("%s ", question)
		line, err := c.ReadLine()
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		if err != nil {
			return "", err
		}
		answer := strings.ToLower(line)
		for _, o := range options {
			if answer == o {
				return answer, nil
			}
		}
		c.Printf("  Please respond with either %s.\n", quoteOptions(options))
	}
}

// Confirm asks a y/n question.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.Choose(c.emphasize(question+" (answer 'y' or 'n')?"), "y", "n")
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

// ChooseDay asks whether an ambiguous weekday is an A-day or a B-day.
func (c *Console) ChooseDay(weekday, date string) (model.DayType, error) {
	q := fmt.Sprintf("  Is %s %s an A-day or a B-day (answer 'a' or 'b')?", weekday, date)
	answer, err := c.Choose(q, "a", "b")
	if err != nil {
		return "", err
	}
	if answer == "b" {
		return model.DayB, nil
	}
	return model.DayA, nil
}

// Pause waits for Enter.
func (c *Console) Pause() {
	c.Printf("Press <Enter> to close window")
	_, _ = c.ReadLine()
}

func quoteOptions(options []string) string {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = "'" + o + "'"
	}
	return strings.Join(quoted, " or ")
}
