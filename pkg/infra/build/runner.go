package build

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// BranchEnvName is the environment variable carrying the pushed branch to the script
const BranchEnvName = "branch"

// Runner executes the build script as a child process
type Runner struct {
	script string
	dir    string
	env    func() []string
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput overrides where the child's stdout and stderr go.
// By default both are inherited from the dispatcher process.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithEnv replaces the base environment passed to the child. The branch
// variable is always appended on top of it.
func WithEnv(env func() []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// New creates a Runner for script, executed with dir as working directory.
// A relative script path is resolved against dir.
func New(script, dir string, opts ...Option) *Runner {
	if !filepath.IsAbs(script) {
		script = filepath.Join(dir, script)
	}

	r := &Runner{
		script: script,
		dir:    dir,
		env:    os.Environ,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Script returns the resolved script path
func (r *Runner) Script() string {
	return r.script
}

// Run starts the script and waits for it to exit. A start failure returns a
// nil result; a non-zero exit returns the result together with an error.
func (r *Runner) Run(ctx context.Context, req *model.BuildRequest) (*model.BuildResult, error) {
	logger := ctxlog.From(ctx)

	cmd := exec.CommandContext(ctx, r.script)
	cmd.Dir = r.dir
	cmd.Env = append(r.env(), BranchEnvName+"="+req.Branch)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	logger.Info("Starting build process",
		"build_id", req.ID,
		"script", r.script,
		"dir", r.dir,
		"branch", req.Branch,
	)

	result := &model.BuildResult{StartedAt: time.Now()}
	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(err, "failed to start build script",
			goerr.V("script", r.script),
			goerr.V("dir", r.dir),
			goerr.V("build_id", req.ID),
		)
	}

	err := cmd.Wait()
	result.FinishedAt = time.Now()
	result.ExitCode = cmd.ProcessState.ExitCode()

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, goerr.Wrap(err, "failed to wait for build script",
				goerr.V("script", r.script),
				goerr.V("build_id", req.ID),
			)
		}
		return result, goerr.Wrap(err, "build script exited with non-zero status",
			goerr.V("exit_code", result.ExitCode),
			goerr.V("branch", req.Branch),
			goerr.V("build_id", req.ID),
		)
	}

	return result, nil
}
