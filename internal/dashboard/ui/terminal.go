package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// Terminal implements Notifier, Confirmer and Navigator over a line-oriented
// console.
type Terminal struct {
	Out io.Writer
	// In answers confirmations. A nil In declines everything unless AssumeYes.
	In        io.Reader
	AssumeYes bool
	Color     bool

	mu     sync.Mutex
	reader *bufio.Reader
	route  Route
}

func (t *Terminal) Notify(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var mark string
	switch level {
	case LevelSuccess:
		mark = "✔"
	case LevelWarning:
		mark = "!"
	case LevelError:
		mark = "✖"
	default:
		mark = "•"
	}
	fmt.Fprintf(t.Out, "%s %s\n", mark, msg)
}

// Confirm prints the prompt and reads one line. The confirm label, its first
// letter, "si", "sí", "y" and "yes" all count as approval.
func (t *Terminal) Confirm(ctx context.Context, in Intent) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	confirm := in.ConfirmLabel
	if t.Color && in.Danger {
		confirm = ansiRed + confirm + ansiReset
	}
	fmt.Fprintf(t.Out, "%s\n%s [%s/%s]: ", in.Title, in.Prompt, confirm, in.CancelLabel)
	if t.AssumeYes {
		fmt.Fprintln(t.Out, in.ConfirmLabel)
		return true, nil
	}
	if t.In == nil {
		fmt.Fprintln(t.Out)
		return false, nil
	}
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		return approves(a.line, in.ConfirmLabel), nil
	}
}

func approves(line, confirmLabel string) bool {
	ans := strings.ToLower(strings.TrimSpace(line))
	if ans == "" {
		return false
	}
	label := strings.ToLower(strings.TrimSpace(confirmLabel))
	switch ans {
	case label, "s", "si", "sí", "y", "yes":
		return true
	}
	return label != "" && ans == string([]rune(label)[:1])
}

// Navigate remembers the destination; a terminal has no screens to switch.
func (t *Terminal) Navigate(to Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.route = to
}

// Route returns the last destination passed to Navigate.
func (t *Terminal) Route() Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}
