package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the TUI Bubble Tea model as a ports.Renderer. Every Start
// runs a fresh program; Stop and Wait end it.
type Renderer struct {
	opts      []tea.ProgramOption
	interrupt func()

	mu      sync.Mutex
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer. interrupt is called when the user
// quits with q or ctrl+c and may be nil.
func NewRenderer(interrupt func(), opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		opts:      opts,
		interrupt: interrupt,
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.model = NewModel(r.interrupt)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.opts...)
	r.program = tea.NewProgram(r.model, opts...)
	r.errCh = make(chan error, 1)

	program, errCh := r.program, r.errCh
	go func() {
		_, err := program.Run()
		errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	if p := r.current(); p != nil {
		p.Quit()
	}
	return nil
}

// Wait blocks until the TUI has terminated. A program ended by its context
// is not an error.
func (r *Renderer) Wait() error {
	r.mu.Lock()
	errCh := r.errCh
	r.mu.Unlock()

	if errCh == nil {
		return nil
	}
	err := <-errCh
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Model returns the model of the current program.
func (r *Renderer) Model() *Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model
}

func (r *Renderer) current() *tea.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

func (r *Renderer) send(msg tea.Msg) {
	if p := r.current(); p != nil {
		p.Send(msg)
	}
}

// OnPlanEmit forwards plan initialization to the TUI.
func (r *Renderer) OnPlanEmit(graph string, groups [][]string) {
	r.send(msgPlan{Graph: graph, Groups: groups})
}

// OnTaskStart forwards task start events to the TUI.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.send(msgTaskStart{SpanID: spanID, Name: name, StartTime: startTime})
}

// OnTaskLog forwards task log data to the TUI.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.send(msgTaskLog{SpanID: spanID, Data: data})
}

// OnTaskComplete forwards task completion events to the TUI.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.send(msgTaskComplete{SpanID: spanID, EndTime: endTime, Err: err})
}
