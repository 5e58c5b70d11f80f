package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nao1215/mriview/internal/model"
)

// terminal renders progress and prompts on an interactive stream.
// Results are written separately through a report.Writer.
type terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	assumeYes bool
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out}
}

// RenderSubmission shows the loading indicator while a request is in flight.
func (t *terminal) RenderSubmission(view model.SubmissionView) {
	if view.ShowLoading {
		t.println("Analyzing image...")
	}
}

// RenderModal shows the loading message of the detail view.
func (t *terminal) RenderModal(content model.ModalContent) {
	if content.Loading {
		t.println(fmt.Sprintf("Loading analysis %s...", content.AnalysisID))
	}
}

// Notify prints a message.
func (t *terminal) Notify(message string) {
	t.println(message)
}

// Confirm asks a yes/no question. Anything but "y" or "yes" declines, as
// does end of input.
func (t *terminal) Confirm(ctx context.Context, prompt string) bool {
	if t.assumeYes {
		return true
	}

	if ctx.Err() != nil {
		return false
	}

	t.mu.Lock()
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	t.mu.Unlock()

	line, err := t.readLine()
	if err != nil || ctx.Err() != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine returns the next input line without its line ending.
func (t *terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}
