package tui_test

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/tui"
)

func TestView_Initialization(t *testing.T) {
	m := tui.NewModel(nil)
	assert.Contains(t, m.View(), "Initializing...")
}

func TestView_TaskList(t *testing.T) {
	m := planned()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	m.Update(tui.StartMsg("a", "scripts", t0))
	m.Update(tui.CompleteMsg("a", t0.Add(12*time.Millisecond), nil))
	m.Update(tui.StartMsg("b", "styles", t0))

	out := m.View()
	assert.Contains(t, out, "COMPILE")
	assert.Contains(t, out, "✓ scripts 12ms")
	assert.Contains(t, out, "● styles")
	assert.Contains(t, out, "○ index")
	assert.Contains(t, out, "LOGS: styles (Following)")
}

func TestView_LogPaneShowsTailAndError(t *testing.T) {
	m := planned()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 8})
	m.Update(tui.StartMsg("a", "styles", t0))
	for _, line := range []string{"one\n", "two\n", "three\n", "four\n", "five\n", "six\n", "seven\n", "eight\n"} {
		m.Update(tui.LogMsg("a", line))
	}
	m.Update(tui.CompleteMsg("a", t0, errors.New("lessc exited with 1")))

	out := m.View()
	assert.Contains(t, out, "eight")
	assert.NotContains(t, out, "one")
	assert.Contains(t, out, "lessc exited with 1")
	assert.Contains(t, out, "✗ styles")
}
