package shell_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newRunner(t *testing.T) *shell.Runner {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return shell.NewRunner(mockLogger)
}

func TestRunner_Run_CapturesStdout(t *testing.T) {
	var diag bytes.Buffer
	out, err := newRunner(t).Run(
		context.Background(), t.TempDir(),
		[]string{"sh", "-c", "echo compiled; echo warning >&2"},
		nil, &diag,
	)

	require.NoError(t, err)
	assert.Equal(t, "compiled\n", string(out))
	assert.Equal(t, "warning\n", diag.String())
}

func TestRunner_Run_FeedsStdin(t *testing.T) {
	out, err := newRunner(t).Run(context.Background(), t.TempDir(), []string{"cat"}, []byte("a { }"), nil)

	require.NoError(t, err)
	assert.Equal(t, "a { }", string(out))
}

func TestRunner_Run_Failure(t *testing.T) {
	_, err := newRunner(t).Run(context.Background(), t.TempDir(), []string{"sh", "-c", "exit 3"}, nil, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCommandFailed.Error())
}

func TestRunner_Run_EmptyCommand(t *testing.T) {
	_, err := newRunner(t).Run(context.Background(), t.TempDir(), nil, nil, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCommandFailed.Error())
}

func TestRunner_Run_PrefersLocalBin(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(bin, domain.DirPerm))
	//nolint:gosec // test script must be executable
	require.NoError(t, os.WriteFile(filepath.Join(bin, "kiln-fake-lessc"), []byte("#!/bin/sh\necho local\n"), 0o755))

	out, err := newRunner(t).Run(context.Background(), dir, []string{"kiln-fake-lessc"}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "local\n", string(out))
}

func TestResolveEnvironment(t *testing.T) {
	env := shell.ResolveEnvironment([]string{"HOME=/home/dev", "PATH=/usr/bin"}, "/p/node_modules/.bin")
	assert.Equal(t, []string{"HOME=/home/dev", "PATH=/p/node_modules/.bin:/usr/bin"}, env)

	env = shell.ResolveEnvironment([]string{"HOME=/home/dev"}, "/p/node_modules/.bin")
	assert.Equal(t, []string{"HOME=/home/dev", "PATH=/p/node_modules/.bin"}, env)
}
