package model

import "time"

// PushEvent is the subset of a push notification the dispatcher reacts to.
// Empty strings stand for fields that were absent or null in the payload.
type PushEvent struct {
	RepositoryFullName string    // repository.full_name
	Ref                string    // e.g. refs/heads/main
	DeliveryID         string    // X-GitHub-Delivery header, if any
	ReceivedAt         time.Time // Time when the request arrived
}

// TriggerDecision is the outcome of matching a PushEvent against a TriggerRule
type TriggerDecision struct {
	ShouldBuild bool
	Branch      string // Set only when ShouldBuild is true
	Repository  string
	Ref         string
	DeliveryID  string
}
