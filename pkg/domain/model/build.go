package model

import "time"

// BuildRequest describes one launch of the external build script
type BuildRequest struct {
	ID          string
	Repository  string
	Branch      string
	Ref         string
	DeliveryID  string
	RequestedAt time.Time
}

// BuildResult holds what is known about a finished build process
type BuildResult struct {
	ExitCode   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall clock time the build process ran
func (r *BuildResult) Duration() time.Duration {
	if r == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the process exited with status 0
func (r *BuildResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}
