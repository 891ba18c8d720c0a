package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/buildhook/pkg/infra/build"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Build holds build process configuration
type Build struct {
	Script          string
	RootDir         string
	LaunchDelay     time.Duration
	SerializeBuilds bool
}

// Flags returns CLI flags for build configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "build-script",
			Usage:       "Build script to run, relative to the root directory unless absolute",
			Value:       "./build-ios.sh",
			Destination: &c.Script,
			Sources:     cli.EnvVars("BUILDHOOK_BUILD_SCRIPT"),
		},
		&cli.StringFlag{
			Name:        "root-dir",
			Usage:       "Working directory of the build script",
			Value:       ".",
			Destination: &c.RootDir,
			Sources:     cli.EnvVars("BUILDHOOK_ROOT_DIR"),
		},
		&cli.DurationFlag{
			Name:        "launch-delay",
			Usage:       "Delay between responding to the webhook and starting the build",
			Value:       0,
			Destination: &c.LaunchDelay,
			Sources:     cli.EnvVars("BUILDHOOK_LAUNCH_DELAY"),
		},
		&cli.BoolFlag{
			Name:        "serialize-builds",
			Usage:       "Run builds of the same branch one at a time",
			Destination: &c.SerializeBuilds,
			Sources:     cli.EnvVars("BUILDHOOK_SERIALIZE_BUILDS"),
		},
	}
}

// NewRunner resolves the root directory and creates the build runner
func (c *Build) NewRunner() (*build.Runner, error) {
	if c.Script == "" {
		return nil, goerr.New("build script is required")
	}
	if c.LaunchDelay < 0 {
		return nil, goerr.New("launch delay must not be negative", goerr.V("delay", c.LaunchDelay))
	}

	dir, err := filepath.Abs(c.RootDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve root directory", goerr.V("root_dir", c.RootDir))
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "root directory is not accessible", goerr.V("root_dir", dir))
	}
	if !info.IsDir() {
		return nil, goerr.New("root directory is not a directory", goerr.V("root_dir", dir))
	}

	return build.New(c.Script, dir), nil
}
