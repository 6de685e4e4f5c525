package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/domain"
)

func newRenderer() *tui.Renderer {
	return tui.NewRenderer(nil,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
}

func TestRenderer_Lifecycle(t *testing.T) {
	renderer := newRenderer()

	require.NoError(t, renderer.Start(context.Background()))
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())
}

func TestRenderer_WaitWithoutStart(t *testing.T) {
	assert.NoError(t, newRenderer().Wait())
}

func TestRenderer_ForwardsEvents(t *testing.T) {
	renderer := newRenderer()
	require.NoError(t, renderer.Start(context.Background()))

	renderer.OnPlanEmit("styles:reload", [][]string{{"styles"}, {"reload"}})
	renderer.OnTaskStart("span-1", "", "styles", t0)
	renderer.OnTaskLog("span-1", []byte("ok\n"))
	renderer.OnTaskComplete("span-1", t0.Add(time.Millisecond), nil)

	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	model := renderer.Model()
	assert.Equal(t, "styles:reload", model.Graph)
	assert.Equal(t, domain.StatusCompleted, model.TaskMap["styles"].Status)
	assert.Equal(t, "ok\n", model.TaskMap["styles"].Logs.String())
}

func TestRenderer_RestartsWithFreshModel(t *testing.T) {
	renderer := newRenderer()

	require.NoError(t, renderer.Start(context.Background()))
	renderer.OnPlanEmit("compile", [][]string{{"scripts"}})
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())

	require.NoError(t, renderer.Start(context.Background()))
	require.NoError(t, renderer.Stop())
	require.NoError(t, renderer.Wait())
	assert.Empty(t, renderer.Model().Tasks)
}

func TestRenderer_ContextCancellation(t *testing.T) {
	renderer := newRenderer()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, renderer.Start(ctx))
	cancel()
	assert.NoError(t, renderer.Wait())
}
