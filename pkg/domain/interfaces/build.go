package interfaces

import (
	"context"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
)

// BuildRunner runs the external build process and blocks until it exits
type BuildRunner interface {
	Run(ctx context.Context, req *model.BuildRequest) (*model.BuildResult, error)
}

// BuildNotifier reports the outcome of a build to operators.
// buildErr is nil when the build succeeded.
type BuildNotifier interface {
	NotifyBuild(ctx context.Context, req *model.BuildRequest, result *model.BuildResult, buildErr error) error
}
