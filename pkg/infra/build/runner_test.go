package build_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/buildhook/pkg/infra/build"
	"github.com/m-mizutani/gt"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunner_Run_Success(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "build.sh", `echo "building $branch in $(pwd)"; echo "$branch" > branch.txt; echo "$EXTRA_VAR" > extra.txt`)

	var stdout, stderr bytes.Buffer
	runner := build.New("./build.sh", dir,
		build.WithOutput(&stdout, &stderr),
		build.WithEnv(func() []string {
			return []string{"PATH=" + os.Getenv("PATH"), "EXTRA_VAR=inherited"}
		}),
	)
	gt.Value(t, runner.Script()).Equal(filepath.Join(dir, "build.sh"))

	result, err := runner.Run(context.Background(), &model.BuildRequest{
		ID:     "build-1",
		Branch: "main",
	})
	gt.NoError(t, err)
	gt.NotNil(t, result)
	gt.Value(t, result.ExitCode).Equal(0)
	gt.True(t, result.Succeeded())

	branch, err := os.ReadFile(filepath.Join(dir, "branch.txt"))
	gt.NoError(t, err)
	gt.Value(t, strings.TrimSpace(string(branch))).Equal("main")

	extra, err := os.ReadFile(filepath.Join(dir, "extra.txt"))
	gt.NoError(t, err)
	gt.Value(t, strings.TrimSpace(string(extra))).Equal("inherited")

	gt.String(t, stdout.String()).Contains("building main")
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "build.sh", `echo "signing failed" >&2; exit 3`)

	var stdout, stderr bytes.Buffer
	runner := build.New("build.sh", dir, build.WithOutput(&stdout, &stderr))

	result, err := runner.Run(context.Background(), &model.BuildRequest{ID: "build-2", Branch: "main"})
	gt.Error(t, err)
	gt.NotNil(t, result)
	gt.Value(t, result.ExitCode).Equal(3)
	gt.False(t, result.Succeeded())
	gt.String(t, err.Error()).Contains("non-zero status")
	gt.String(t, stderr.String()).Contains("signing failed")
}

func TestRunner_Run_MissingScript(t *testing.T) {
	dir := t.TempDir()
	runner := build.New("./does-not-exist.sh", dir)

	result, err := runner.Run(context.Background(), &model.BuildRequest{ID: "build-3", Branch: "main"})
	gt.Error(t, err)
	gt.Value(t, result == nil).Equal(true)
	gt.String(t, err.Error()).Contains("failed to start build script")
}

func TestRunner_AbsoluteScriptPath(t *testing.T) {
	scriptDir := t.TempDir()
	workDir := t.TempDir()
	script := writeScript(t, scriptDir, "build.sh", `pwd > where.txt`)

	runner := build.New(script, workDir, build.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	gt.Value(t, runner.Script()).Equal(script)

	_, err := runner.Run(context.Background(), &model.BuildRequest{ID: "build-4", Branch: "develop"})
	gt.NoError(t, err)

	_, err = os.Stat(filepath.Join(workDir, "where.txt"))
	gt.NoError(t, err)
}
