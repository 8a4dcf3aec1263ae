package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter asks the user to confirm an action such as overwriting a file.
type Prompter interface {
	// Confirm shows message and reports whether the user answered yes.
	Confirm(message string) (bool, error)
}

// LinePrompter confirms by reading one answer line. Only "y" or "yes"
// (any case) confirm; an empty answer or EOF means no.
type LinePrompter struct {
	readLine func(prompt string) (string, error)
}

// Confirm implements Prompter.
func (p *LinePrompter) Confirm(message string) (bool, error) {
	answer, err := p.readLine(message + " [y/N]: ")
	if err == io.EOF || err == readline.ErrInterrupt {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// NewReaderPrompter prompts on w and reads answers from r. The reader is
// buffered once, so consecutive prompts consume consecutive lines.
func NewReaderPrompter(r io.Reader, w io.Writer) *LinePrompter {
	br := bufio.NewReader(r)
	return &LinePrompter{readLine: func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		line, err := br.ReadString('\n')
		if err == io.EOF && line != "" {
			return line, nil
		}
		return line, err
	}}
}

// newReadlinePrompter asks through the shell's line editor so the answer
// does not race readline for the terminal.
func newReadlinePrompter(rl *readline.Instance) *LinePrompter {
	return &LinePrompter{readLine: func(prompt string) (string, error) {
		previous := rl.Config.Prompt
		rl.SetPrompt(prompt)
		defer rl.SetPrompt(previous)
		return rl.Readline()
	}}
}

var _ Prompter = (*LinePrompter)(nil)
