// Package prompt asks the user yes/no questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal reads answers from In after writing the question to Out.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a Terminal bound to stdin and stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Confirm writes prompt and reads one line. Only an answer starting with "Y"
// is affirmative; an empty answer or closed input declines.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(t.Out, "%s ", prompt); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	if !interactive(t.In) {
		// Piped input is not echoed by a terminal
		fmt.Fprintln(t.Out, strings.TrimSpace(line))
	}

	return Affirmative(line), nil
}

// Affirmative reports whether answer accepts the question. Only the line
// terminator is stripped; leading whitespace declines.
func Affirmative(answer string) bool {
	return strings.HasPrefix(strings.TrimRight(answer, "\r\n"), "Y")
}

func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Static answers every question with a fixed value.
type Static bool

// Confirm returns the fixed answer.
func (s Static) Confirm(string) (bool, error) {
	return bool(s), nil
}
