package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/buildhook/pkg/domain/interfaces"
	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/buildhook/pkg/utils/async"
	"github.com/m-mizutani/buildhook/pkg/utils/keylock"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

type webhookUseCase struct {
	rule        model.TriggerRule
	runner      interfaces.BuildRunner
	notifier    interfaces.BuildNotifier
	launchDelay time.Duration
	locker      *keylock.Locker
	now         func() time.Time
	onDispatch  func(<-chan struct{})
}

// Option configures the webhook use case
type Option func(*webhookUseCase)

// WithNotifier reports every build outcome to n
func WithNotifier(n interfaces.BuildNotifier) Option {
	return func(uc *webhookUseCase) {
		uc.notifier = n
	}
}

// WithLaunchDelay waits d before starting the build process
func WithLaunchDelay(d time.Duration) Option {
	return func(uc *webhookUseCase) {
		uc.launchDelay = d
	}
}

// WithSerializedBuilds makes builds of the same branch wait for each other.
// Without it, overlapping pushes run overlapping builds.
func WithSerializedBuilds() Option {
	return func(uc *webhookUseCase) {
		uc.locker = keylock.New()
	}
}

// WithDispatchHook is called with the completion channel of every launched build
func WithDispatchHook(hook func(done <-chan struct{})) Option {
	return func(uc *webhookUseCase) {
		uc.onDispatch = hook
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(rule model.TriggerRule, runner interfaces.BuildRunner, opts ...Option) *webhookUseCase {
	uc := &webhookUseCase{
		rule:   rule,
		runner: runner,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Evaluate decides whether the push event should start a build
func (uc *webhookUseCase) Evaluate(ctx context.Context, event *model.PushEvent) *model.TriggerDecision {
	logger := ctxlog.From(ctx)

	decision := uc.rule.Decide(event)

	logger.Info("Evaluated push event",
		"delivery_id", decision.DeliveryID,
		"repository", decision.Repository,
		"ref", decision.Ref,
		"target_repository", uc.rule.Repository,
		"branch_policy", uc.rule.Policy.String(),
		"should_build", decision.ShouldBuild,
	)

	return decision
}

// Trigger launches the build in the background and returns immediately.
// Nothing deduplicates launches: every positive decision starts a process.
func (uc *webhookUseCase) Trigger(ctx context.Context, decision *model.TriggerDecision) {
	if decision == nil || !decision.ShouldBuild {
		return
	}

	req := &model.BuildRequest{
		ID:          uuid.NewString(),
		Repository:  decision.Repository,
		Branch:      decision.Branch,
		Ref:         decision.Ref,
		DeliveryID:  decision.DeliveryID,
		RequestedAt: uc.now(),
	}

	ctxlog.From(ctx).Info("Push detected, triggering build",
		"build_id", req.ID,
		"branch", req.Branch,
		"delivery_id", req.DeliveryID,
	)

	done := async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.runBuild(ctx, req)
	})
	if uc.onDispatch != nil {
		uc.onDispatch(done)
	}
}

func (uc *webhookUseCase) runBuild(ctx context.Context, req *model.BuildRequest) error {
	logger := ctxlog.From(ctx).With("build_id", req.ID, "branch", req.Branch)
	ctx = ctxlog.With(ctx, logger)

	if uc.launchDelay > 0 {
		time.Sleep(uc.launchDelay)
	}

	if uc.locker != nil {
		logger.Debug("Waiting for branch build lock")
		unlock := uc.locker.Lock(req.Branch)
		defer unlock()
	}

	result, err := uc.runner.Run(ctx, req)

	if uc.notifier != nil {
		if nErr := uc.notifier.NotifyBuild(ctx, req, result, err); nErr != nil {
			logger.Warn("Failed to notify build result", "error", nErr)
		}
	}

	if err != nil {
		return goerr.Wrap(err, "build failed",
			goerr.V("build_id", req.ID),
			goerr.V("branch", req.Branch),
			goerr.V("repository", req.Repository),
		)
	}

	if result == nil {
		result = &model.BuildResult{}
	}
	logger.Info("Build succeeded",
		"exit_code", result.ExitCode,
		"duration_ms", result.Duration().Milliseconds(),
	)
	return nil
}
