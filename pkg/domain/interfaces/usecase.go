package interfaces

import (
	"context"

	"github.com/m-mizutani/buildhook/pkg/domain/model"
)

// WebhookUseCase defines the interface for push event handling
type WebhookUseCase interface {
	// Evaluate decides whether a push event should start a build
	Evaluate(ctx context.Context, event *model.PushEvent) *model.TriggerDecision

	// Trigger launches the build for a positive decision without waiting for it.
	// It is a no-op when the decision does not call for a build.
	Trigger(ctx context.Context, decision *model.TriggerDecision)
}
