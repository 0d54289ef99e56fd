package core

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Notifier reports recoverable problems to the user (missing links, invalid templates, etc.).
type Notifier interface {
	Warn(msg string)
}

// ConsoleNotifier prints warnings in yellow and logs them.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: color.Error}
}

func (n *ConsoleNotifier) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, color.YellowString("⚠️  %s", msg))
	CurrentLogger().Debugf("Warning: %s", msg)
}

// RecordingNotifier keeps warnings in memory.
type RecordingNotifier struct {
	mu       sync.Mutex
	warnings []string
}

func (n *RecordingNotifier) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

// Warnings returns a copy of the recorded warnings.
func (n *RecordingNotifier) Warnings() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.warnings...)
}

// prefixNotifier prepends the note path to each warning.
type prefixNotifier struct {
	prefix string
	target Notifier
}

func (n prefixNotifier) Warn(msg string) {
	n.target.Warn(n.prefix + msg)
}

var _ Notifier = (*ConsoleNotifier)(nil)
var _ Notifier = (*RecordingNotifier)(nil)
