// Package shell runs the external tools used by transforms.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// localBinDir holds tools installed by the project's package manager.
var localBinDir = filepath.Join("node_modules", ".bin")

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes argv in dir. The project's node_modules/.bin is searched before
// the system PATH. Stdout is captured and returned; stderr streams to diag.
func (r *Runner) Run(ctx context.Context, dir string, argv []string, stdin []byte, diag io.Writer) ([]byte, error) {
	if len(argv) == 0 {
		return nil, zerr.With(domain.ErrCommandFailed, "reason", "empty command")
	}

	name := argv[0]
	env := resolveEnvironment(os.Environ(), filepath.Join(dir, localBinDir))

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // tools come from the project's configuration
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = dir
	cmd.Env = env

	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if diag == nil {
		diag = io.Discard
	}
	cmd.Stderr = diag

	r.logger.Debug("running " + strings.Join(argv, " "))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return nil, zerr.With(
			zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", name),
			"exit_code", exitCode,
		)
	}

	return stdout.Bytes(), nil
}

// resolveEnvironment returns sysEnv with binDir prepended to PATH.
func resolveEnvironment(sysEnv []string, binDir string) []string {
	result := make([]string, 0, len(sysEnv)+1)
	found := false

	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok && k == "PATH" {
			found = true
			if v != "" {
				entry = "PATH=" + binDir + string(os.PathListSeparator) + v
			} else {
				entry = "PATH=" + binDir
			}
		}
		result = append(result, entry)
	}

	if !found {
		result = append(result, "PATH="+binDir)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
