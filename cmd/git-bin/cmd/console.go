package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/core"
	"github.com/oneconcern/gitbin/pkg/transfer"
)

const consolePrefix = "[git-bin] "

// console writes user facing messages to stderr, since stdout carries the payload of git filters.
type console struct {
	w      io.Writer
	prefix string

	mu       sync.Mutex
	progress string
}

func newConsole(w io.Writer) *console {
	return &console{
		w:      w,
		prefix: color.New(color.FgCyan).Sprint(consolePrefix),
	}
}

// Printf writes a prefixed line
func (c *console) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, c.prefix+format+"\n", args...)
}

// Errorf writes a prefixed line, highlighted in red on a terminal
func (c *console) Errorf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, c.prefix+color.RedString(format, args...))
}

// Start writes a prefixed message, left open for a progress indicator
func (c *console) Start(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = ""
	_, _ = fmt.Fprintf(c.w, c.prefix+format, args...)
}

// Progress overwrites the previous percentage with the current one
func (c *console) Progress(ev transfer.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fmt.Sprintf("%.2f%%", ev.Percent)
	_, _ = io.WriteString(c.w, strings.Repeat("\b", len(c.progress))+next)
	c.progress = next
}

// Done closes a line opened by Start
func (c *console) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = ""
	_, _ = io.WriteString(c.w, "\n")
}

func humanSize(size int64) string {
	return units.BytesSize(float64(size))
}

func describe(s chunk.Summary) string {
	return fmt.Sprintf("%s (%s)", core.ChunkCount(s.Count), humanSize(s.Size))
}
