// Package linear provides a synchronous, line-buffered console renderer.
package linear

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/olekukonko/tablewriter"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with chronological log lines. Task
// output goes to stdout prefixed with the task name; lifecycle lines and the
// summary table go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	tasks   map[string]*taskState // spanID -> task state
	buffers map[string]*bytes.Buffer
	results []result
}

type taskState struct {
	name      string
	startTime time.Time
}

type result struct {
	name     string
	status   domain.TaskStatus
	duration time.Duration
}

// NewRenderer creates a Renderer. Nil writers default to os.Stdout and
// os.Stderr; profile selects the color profile of stderr.
func NewRenderer(stdout, stderr io.Writer, profile func() termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if profile == nil {
		profile = output.ColorProfile
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, profile),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op; the renderer is synchronous.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines and prints the summary of the finished tasks.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	if len(r.results) > 0 {
		r.printSummaryLocked()
		r.results = nil
	}
	return nil
}

// Wait is a no-op; the renderer is synchronous.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the graph about to run.
func (r *Renderer) OnPlanEmit(graph string, groups [][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := 0
	for _, group := range groups {
		tasks += len(group)
	}

	name := r.output.String(graph).Foreground(r.color(style.Ember)).Bold().String()
	_, _ = fmt.Fprintf(r.stderr, "%s %d task(s) in %d group(s)\n", name, tasks, len(groups))
}

// OnTaskStart prints a task start line.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{name: name, startTime: startTime}
	r.buffers[spanID] = new(bytes.Buffer)

	line := r.output.String(style.Arrow + " " + name).Foreground(r.color(style.Ash)).String()
	_, _ = fmt.Fprintln(r.stderr, line)
}

// OnTaskLog buffers output and prints complete lines with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				r.buffers[spanID] = rest
			}
			break
		}
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes the task's output and prints its outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)
	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	status := statusOf(err)

	var glyph, text string
	var color termenv.Color
	switch status {
	case domain.StatusRecovered:
		glyph, color = style.Warning, r.color(style.Yellow)
		text = fmt.Sprintf("%s recovered after %v: %v", task.name, duration, err)
	case domain.StatusFailed:
		glyph, color = style.Cross, r.color(style.Red)
		text = fmt.Sprintf("%s failed after %v: %v", task.name, duration, err)
	default:
		glyph, color = style.Check, r.color(style.Green)
		text = fmt.Sprintf("%s completed in %v", task.name, duration)
	}
	symbol := r.output.String(glyph).Foreground(color).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", symbol, text)

	r.results = append(r.results, result{name: task.name, status: status, duration: duration})
	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

func statusOf(err error) domain.TaskStatus {
	switch {
	case err == nil:
		return domain.StatusCompleted
	case errors.Is(err, domain.ErrTaskRecovered):
		return domain.StatusRecovered
	default:
		return domain.StatusFailed
	}
}

func (r *Renderer) color(c lipgloss.Color) termenv.Color {
	return r.output.Color(string(c))
}

// printSummaryLocked must be called with r.mu held.
func (r *Renderer) printSummaryLocked() {
	rows := slices.Clone(r.results)
	slices.SortStableFunc(rows, func(a, b result) int {
		return strings.Compare(a.name, b.name)
	})

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Task", "Status", "Duration"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, row := range rows {
		table.Append([]string{row.name, string(row.status), row.duration.String()})
	}
	table.Render()

	_, _ = fmt.Fprint(r.stderr, "\n"+buf.String())
}

// flushBufferLocked must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(taskName string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", taskName, line)
}
