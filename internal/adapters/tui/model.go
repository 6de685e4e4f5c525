// Package tui provides an interactive terminal renderer for one-shot builds.
package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/core/domain"
)

const (
	taskListWidthRatio = 0.3
	logPaneBorderWidth = 4
	timeResolution     = time.Millisecond
)

// TaskNode represents a single task in the UI list.
type TaskNode struct {
	Name      string
	Group     int
	Status    domain.TaskStatus
	Logs      *LogView
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the task ran, or zero while it has not finished.
func (n *TaskNode) Duration() time.Duration {
	if n.StartTime.IsZero() || n.EndTime.IsZero() {
		return 0
	}
	return n.EndTime.Sub(n.StartTime)
}

// Model represents the main TUI state.
type Model struct {
	Graph          string
	Tasks          []*TaskNode
	TaskMap        map[string]*TaskNode
	SpanMap        map[string]*TaskNode
	ActiveTaskName string
	SelectedIdx    int
	FollowMode     bool
	ListHeight     int
	LogWidth       int
	LogHeight      int

	// interrupt is called when the user quits the TUI.
	interrupt func()
}

// NewModel creates an empty model. interrupt may be nil.
func NewModel(interrupt func()) *Model {
	return &Model{
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		FollowMode: true,
		interrupt:  interrupt,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) selectTask(idx int) {
	if idx < 0 || idx >= len(m.Tasks) {
		return
	}
	m.SelectedIdx = idx
	m.ActiveTaskName = m.Tasks[idx].Name
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.interrupt != nil {
				m.interrupt()
			}
			return m, tea.Quit
		case "k", "up":
			m.FollowMode = false
			m.selectTask(m.SelectedIdx - 1)
		case "j", "down":
			m.FollowMode = false
			m.selectTask(m.SelectedIdx + 1)
		case "esc":
			m.FollowMode = true
			for i, t := range m.Tasks {
				if t.Status == domain.StatusRunning {
					m.selectTask(i)
					break
				}
			}
		}

	case tea.WindowSizeMsg:
		// Split screen: 30% for task list, 70% for logs
		listWidth := int(float64(msg.Width) * taskListWidthRatio)
		m.LogWidth = msg.Width - listWidth - logPaneBorderWidth

		headerHeight := lipgloss.Height(titleStyle.Render("TASKS") + "\n\n")
		m.LogHeight = msg.Height - headerHeight
		m.ListHeight = msg.Height - headerHeight
		for _, t := range m.Tasks {
			t.Logs.Resize(m.LogWidth)
		}

	case msgPlan:
		m.Graph = msg.Graph
		m.Tasks = m.Tasks[:0]
		m.TaskMap = make(map[string]*TaskNode)
		m.SpanMap = make(map[string]*TaskNode)
		m.ActiveTaskName = ""
		m.SelectedIdx = 0
		for group, names := range msg.Groups {
			for _, name := range names {
				node := &TaskNode{
					Name:   name,
					Group:  group,
					Status: domain.StatusPending,
					Logs:   NewLogView(m.LogWidth),
				}
				m.Tasks = append(m.Tasks, node)
				m.TaskMap[name] = node
			}
		}

	case msgTaskStart:
		if node, ok := m.TaskMap[msg.Name]; ok {
			node.Status = domain.StatusRunning
			node.StartTime = msg.StartTime
			m.SpanMap[msg.SpanID] = node

			// Focus follows activity only in follow mode
			if m.FollowMode {
				for i, t := range m.Tasks {
					if t.Name == msg.Name {
						m.selectTask(i)
						break
					}
				}
			}
		}

	case msgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Logs.Write(msg.Data)
		}

	case msgTaskComplete:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.EndTime = msg.EndTime
			node.Err = msg.Err
			switch {
			case msg.Err == nil:
				node.Status = domain.StatusCompleted
			case errors.Is(msg.Err, domain.ErrTaskRecovered):
				node.Status = domain.StatusRecovered
			default:
				node.Status = domain.StatusFailed
			}
		}
	}

	return m, nil
}
