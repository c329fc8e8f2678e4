package einstein

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter asks on Out and reads answers from In. Secret prompts are not
// echoed when In is a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (t *TerminalPrompter) Prompt(ctx context.Context, p Prompt) (string, error) {
	text := p.Text
	if len(p.Choices) > 0 {
		text += " (" + strings.Join(p.Choices, ", ") + ")"
	}
	fmt.Fprintf(t.Out, "%s: ", text)

	fd := int(t.In.Fd())
	if p.Secret && term.IsTerminal(fd) {
		answer, err := term.ReadPassword(fd)
		fmt.Fprintln(t.Out)
		if err != nil {
			return "", err
		}
		return string(answer), nil
	}

	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AnswerPrompter answers from a fixed set of values keyed by Prompt.Field.
// Unknown fields get an empty answer.
type AnswerPrompter map[string]string

func (a AnswerPrompter) Prompt(ctx context.Context, p Prompt) (string, error) {
	return a[p.Field], nil
}
