// Package console prints the progress of long-running exports on a single
// terminal line.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type ProgressLog struct {
	mu            sync.Mutex
	output        io.Writer
	showBar       bool
	maxSteps      int
	maxCharacters int
	done          int
	failed        []string
}

func NewProgressLog(maxSteps int, options ...func(*ProgressLog)) *ProgressLog {
	result := &ProgressLog{
		output:        os.Stdout,
		showBar:       true,
		maxSteps:      maxSteps,
		maxCharacters: 80,
	}
	for _, option := range options {
		option(result)
	}
	return result
}

func ToWriter(w io.Writer) func(*ProgressLog) {
	return func(s *ProgressLog) {
		s.output = w
	}
}

func HideBar() func(*ProgressLog) {
	return func(s *ProgressLog) {
		s.showBar = false
	}
}

func LineLength(characters int) func(*ProgressLog) {
	return func(s *ProgressLog) {
		s.maxCharacters = characters
	}
}

// Done records a successful step. Workers may call it concurrently.
func (l *ProgressLog) Done(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done++
	l.print(message)
}

// Fail records a failed step.
func (l *ProgressLog) Fail(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done++
	l.failed = append(l.failed, message)
	l.print("failed: " + message)
}

// Failures returns the messages of failed steps in completion order.
func (l *ProgressLog) Failures() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.failed...)
}

func (l *ProgressLog) print(message string) {
	percent := 100
	if l.maxSteps > 0 {
		percent = l.done * 100 / l.maxSteps
	}

	var sb strings.Builder
	if l.showBar {
		sb.WriteString(strings.Repeat("#", percent/10))
		sb.WriteString(strings.Repeat(" ", 10-percent/10))
		sb.WriteRune(' ')
	}
	sb.WriteString(fmt.Sprintf("(%d/%d) ", l.done, l.maxSteps))
	sb.WriteString(message)

	fmt.Fprint(l.output, fit(sb.String(), l.maxCharacters), "\r")
}

// Clear rewrites the progress line with a final message.
func (l *ProgressLog) Clear(newMessage string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprint(l.output, fit(newMessage, l.maxCharacters))
	if newMessage == "" {
		fmt.Fprint(l.output, "\r")
	} else {
		fmt.Fprint(l.output, "\n")
	}
}

// fit truncates or pads a line to the given width.
func fit(line string, width int) string {
	if len(line) > width {
		return line[0:width]
	}
	return line + strings.Repeat(" ", width-len(line))
}
