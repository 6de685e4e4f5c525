package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.taskList(),
		m.logPane(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	title := "TASKS"
	if m.Graph != "" {
		title = strings.ToUpper(m.Graph)
	}
	s.WriteString(titleStyle.Render(title) + "\n\n")

	// Keep the selected task visible
	start := 0
	if m.ListHeight > 0 && m.SelectedIdx >= m.ListHeight {
		start = m.SelectedIdx - m.ListHeight + 1
	}
	end := min(len(m.Tasks), start+max(m.ListHeight, 0))

	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderTaskRow(index int, task *TaskNode) string {
	rowStyle := taskStyle(task.Status)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if !task.Status.IsTerminal() {
			rowStyle = selectedStyle
		}
	}

	content := fmt.Sprintf("%s %s", taskIcon(task.Status), task.Name)
	if d := task.Duration(); d > 0 {
		content += " " + taskPendingStyle.Render(d.Round(timeResolution).String())
	}
	return cursor + rowStyle.Render(content)
}

func taskIcon(status domain.TaskStatus) string {
	switch status {
	case domain.StatusRunning:
		return style.Dot
	case domain.StatusCompleted:
		return style.Check
	case domain.StatusRecovered:
		return style.Warning
	case domain.StatusFailed:
		return style.Cross
	default:
		return "○"
	}
}

func taskStyle(status domain.TaskStatus) lipgloss.Style {
	switch status {
	case domain.StatusRunning:
		return taskRunningStyle
	case domain.StatusCompleted:
		return taskDoneStyle
	case domain.StatusRecovered:
		return taskRecoveredStyle
	case domain.StatusFailed:
		return taskErrorStyle
	default:
		return taskPendingStyle
	}
}

func (m *Model) logPane() string {
	header := titleStyle.Render("LOGS (Waiting...)")
	var content string

	if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
		mode := " (Following)"
		if !m.FollowMode {
			mode = " (Manual)"
		}
		header = titleStyle.Render("LOGS: " + node.Name + mode)
		content = node.Logs.Tail(m.LogHeight - 1)
		if node.Err != nil {
			content = strings.TrimLeft(content+"\n"+taskErrorStyle.Render(node.Err.Error()), "\n")
		}
	}

	return logStyle.Width(max(m.LogWidth, 0)).Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			content,
		),
	)
}
