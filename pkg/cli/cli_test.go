package cli_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/buildhook/pkg/cli"
	"github.com/m-mizutani/gt"
)

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"buildhook", "--log-level", "verbose", "serve"})
	gt.Error(t, err)
}

func TestRun_Serve_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "Missing root directory",
			args: []string{"buildhook", "serve", "--root-dir", filepath.Join(t.TempDir(), "missing")},
		},
		{
			name: "Empty target repository",
			args: []string{"buildhook", "serve", "--target-repo", ""},
		},
		{
			name: "Missing config file",
			args: []string{"buildhook", "serve", "--config", filepath.Join(t.TempDir(), "missing.toml")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.Run(context.Background(), tt.args)
			gt.Error(t, err)
		})
	}
}
