package config

import (
	"strings"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Trigger holds the push matching configuration
type Trigger struct {
	TargetRepo string
	Branch     string
}

// Flags returns CLI flags for trigger configuration
func (c *Trigger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "target-repo",
			Usage:       "Repository full name (owner/name) whose pushes trigger a build",
			Value:       "YOUR_ORG/YOUR_REPO",
			Destination: &c.TargetRepo,
			Sources:     cli.EnvVars("BUILDHOOK_TARGET_REPO", "TARGET_REPO"),
		},
		&cli.StringFlag{
			Name:        "branch",
			Usage:       "Only build pushes to this branch (any branch when empty)",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("BUILDHOOK_BRANCH"),
		},
	}
}

// TriggerRule validates the configuration and builds the matching rule
func (c *Trigger) TriggerRule() (model.TriggerRule, error) {
	if c.TargetRepo == "" {
		return model.TriggerRule{}, goerr.New("target repository is required")
	}

	branch := strings.TrimPrefix(c.Branch, model.RefHeadsPrefix)
	if strings.ContainsAny(branch, " \t\n") {
		return model.TriggerRule{}, goerr.New("invalid branch name", goerr.V("branch", c.Branch))
	}

	return model.TriggerRule{
		Repository: c.TargetRepo,
		Policy:     model.BranchPolicy{Branch: branch},
	}, nil
}
