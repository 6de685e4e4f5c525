package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
)

type call struct {
	name string
	opts app.RunOptions
}

type mockApp struct {
	calls []call
	err   error
}

func (m *mockApp) record(name string, opts app.RunOptions) error {
	m.calls = append(m.calls, call{name: name, opts: opts})
	return m.err
}

func (m *mockApp) Up(_ context.Context, opts app.RunOptions) error {
	return m.record("up", opts)
}

func (m *mockApp) Build(_ context.Context, opts app.RunOptions) error {
	return m.record("build", opts)
}

func (m *mockApp) Compile(_ context.Context, opts app.RunOptions) error {
	return m.record("compile", opts)
}

func (m *mockApp) Clean(_ context.Context, opts app.RunOptions) error {
	return m.record("clean", opts)
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	cli.SetArgs(args)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Dispatch(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: nil, want: "up"},
		{args: []string{"up"}, want: "up"},
		{args: []string{"build"}, want: "build"},
		{args: []string{"compile"}, want: "compile"},
		{args: []string{"clean"}, want: "clean"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := &mockApp{}
			_, err := execute(t, m, tt.args...)
			require.NoError(t, err)
			require.Len(t, m.calls, 1)
			assert.Equal(t, tt.want, m.calls[0].name)
		})
	}
}

func TestCommands_Flags(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "build", "--compress", "-c", "site/kiln.yaml", "-p", "8080", "--no-open",
		"--log-level", "debug", "--log-file", "build.log", "-o", "linear")
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	opts := m.calls[0].opts
	assert.True(t, opts.Overrides.Compress)
	assert.Equal(t, "site/kiln.yaml", opts.Overrides.ConfigPath)
	assert.Equal(t, 8080, opts.Overrides.Port)
	assert.True(t, opts.Overrides.NoOpen)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "build.log", opts.LogFile)
	assert.Equal(t, "linear", opts.OutputMode)
}

func TestCommands_Defaults(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m)
	require.NoError(t, err)

	opts := m.calls[0].opts
	assert.False(t, opts.Overrides.Compress)
	assert.Empty(t, opts.Overrides.ConfigPath)
	assert.Zero(t, opts.Overrides.Port)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, "auto", opts.OutputMode)
}

func TestCommands_EnvironmentOverrides(t *testing.T) {
	t.Setenv("KILN_COMPRESS", "true")
	t.Setenv("KILN_PORT", "9000")
	t.Setenv("KILN_NO_OPEN", "1")
	t.Setenv("KILN_OUTPUT", "tui")

	m := &mockApp{}
	_, err := execute(t, m, "up")
	require.NoError(t, err)

	opts := m.calls[0].opts
	assert.True(t, opts.Overrides.Compress)
	assert.Equal(t, 9000, opts.Overrides.Port)
	assert.True(t, opts.Overrides.NoOpen)
	assert.Equal(t, "tui", opts.OutputMode)
}

func TestCommands_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("KILN_PORT", "9000")

	m := &mockApp{}
	_, err := execute(t, m, "up", "--port", "3000")
	require.NoError(t, err)
	assert.Equal(t, 3000, m.calls[0].opts.Overrides.Port)
}

func TestCommands_ReturnsAppError(t *testing.T) {
	m := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, m, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestCommands_RejectsArguments(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "build", "extra")
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kiln version "+build.Version)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
