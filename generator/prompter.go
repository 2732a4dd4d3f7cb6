package generator

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter is the interactive surface of a Generate call: it shows the
// candidate tickets and collects the user's verdict and feedback.
type Prompter interface {
	Show(text string)
	Confirm(question string) (bool, error)
	Ask(question string) (string, error)
}

// TermPrompter implements Prompter over a line-oriented terminal.
type TermPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTermPrompter(in io.Reader, out io.Writer) *TermPrompter {
	return &TermPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *TermPrompter) Show(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *TermPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "\n%s ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(line)
	return answer == "y" || answer == "yes", nil
}

func (p *TermPrompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "\n%s ", question)
	return p.readLine()
}

func (p *TermPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
