package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored output into a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("some message")

	goldie.New(t).Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("cache is stale")

	goldie.New(t).Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Debug(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("resolved 3 inputs")
	assert.Empty(t, buf.String(), "debug is hidden at info level")

	lg.SetLevel(slog.LevelDebug)
	lg.Debug("resolved 3 inputs")
	goldie.New(t).Assert(t, "debug_enabled", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "zerr chain with metadata",
			err: zerr.With(
				zerr.Wrap(zerr.Wrap(errors.New("unexpected token"), "transform failed"), "task execution failed"),
				"task", "scripts",
			),
			goldenName: "error_chain",
		},
		{
			name: "joined categories",
			err: errors.Join(
				domain.ErrBuildExecutionFailed,
				errors.Join(
					domain.ErrGraphAborted,
					zerr.With(zerr.Wrap(errors.New("exit status 1"), domain.ErrTaskExecutionFailed.Error()), "task", "styles"),
				),
			),
			goldenName: "error_joined",
		},
		{
			name: "metadata on a standard error",
			err: zerr.Wrap(
				zerr.With(errors.New("open src/app/main.js: no such file or directory"), "path", "src/app/main.js"),
				"failed to read file",
			),
			goldenName: "error_foreign_metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("hello")
	lg.Error(zerr.New("broken"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"msg":"operation failed"`)
	assert.Contains(t, out, "broken")
}

func TestLogger_DebugFile(t *testing.T) {
	lg, buf := newTestLogger(t)
	path := filepath.Join(t.TempDir(), domain.DefaultDebugLogPath())

	require.NoError(t, lg.SetDebugFile(path))
	lg.Debug("only in the file")
	lg.Info("in both")
	require.NoError(t, lg.Close())

	assert.Equal(t, "in both\n", buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"only in the file"`)
	assert.Contains(t, string(data), `"msg":"in both"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error ", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("loud", slog.LevelInfo))
}
