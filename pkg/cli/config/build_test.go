package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/buildhook/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestBuild_NewRunner(t *testing.T) {
	t.Run("resolves relative script against root directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.Build{Script: "./build-ios.sh", RootDir: dir}

		runner, err := cfg.NewRunner()
		gt.NoError(t, err)
		gt.Value(t, runner.Script()).Equal(filepath.Join(dir, "build-ios.sh"))
	})

	t.Run("missing root directory", func(t *testing.T) {
		cfg := config.Build{Script: "./build.sh", RootDir: filepath.Join(t.TempDir(), "nope")}
		_, err := cfg.NewRunner()
		gt.Error(t, err)
	})

	t.Run("root directory is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		gt.NoError(t, os.WriteFile(path, []byte("x"), 0600))

		cfg := config.Build{Script: "./build.sh", RootDir: path}
		_, err := cfg.NewRunner()
		gt.Error(t, err)
	})

	t.Run("empty script", func(t *testing.T) {
		cfg := config.Build{RootDir: t.TempDir()}
		_, err := cfg.NewRunner()
		gt.Error(t, err)
	})

	t.Run("negative delay", func(t *testing.T) {
		cfg := config.Build{Script: "./build.sh", RootDir: t.TempDir(), LaunchDelay: -time.Second}
		_, err := cfg.NewRunner()
		gt.Error(t, err)
	})
}
