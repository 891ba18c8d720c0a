package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Slack posts build outcomes to a Slack incoming webhook
type Slack struct {
	webhookURL string
}

// NewSlack creates a notifier for the given incoming webhook URL
func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}

// NotifyBuild posts one message describing the build outcome
func (s *Slack) NotifyBuild(ctx context.Context, req *model.BuildRequest, result *model.BuildResult, buildErr error) error {
	msg := &slack.WebhookMessage{
		Text: formatMessage(req, result, buildErr),
	}

	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post build notification to Slack",
			goerr.V("build_id", req.ID),
		)
	}
	return nil
}

func formatMessage(req *model.BuildRequest, result *model.BuildResult, buildErr error) string {
	var sb strings.Builder

	if buildErr == nil {
		sb.WriteString(fmt.Sprintf(":white_check_mark: Build succeeded for `%s` (%s)\n", req.Branch, req.Repository))
	} else {
		sb.WriteString(fmt.Sprintf(":x: Build failed for `%s` (%s)\n", req.Branch, req.Repository))
	}

	sb.WriteString(fmt.Sprintf("• build: `%s`\n", req.ID))
	if result != nil {
		sb.WriteString(fmt.Sprintf("• exit code: %d\n", result.ExitCode))
		sb.WriteString(fmt.Sprintf("• duration: %s\n", result.Duration().Round(time.Millisecond)))
	}
	if buildErr != nil {
		sb.WriteString(fmt.Sprintf("• error: %s\n", buildErr.Error()))
	}

	return sb.String()
}
