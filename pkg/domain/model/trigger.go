package model

import "strings"

// RefHeadsPrefix is the prefix of every branch ref
const RefHeadsPrefix = "refs/heads/"

// BranchPolicy decides which refs may trigger a build. An empty Branch
// accepts any ref under refs/heads/, otherwise only refs/heads/<Branch>.
type BranchPolicy struct {
	Branch string
}

// AnyBranch reports whether the policy accepts every branch
func (p BranchPolicy) AnyBranch() bool {
	return p.Branch == ""
}

// Match returns the branch name extracted from ref and whether ref is accepted
func (p BranchPolicy) Match(ref string) (string, bool) {
	if p.AnyBranch() {
		if !strings.HasPrefix(ref, RefHeadsPrefix) {
			return "", false
		}
		return strings.TrimPrefix(ref, RefHeadsPrefix), true
	}

	if ref != RefHeadsPrefix+p.Branch {
		return "", false
	}
	return p.Branch, true
}

// String returns a human readable form used in logs
func (p BranchPolicy) String() string {
	if p.AnyBranch() {
		return RefHeadsPrefix + "*"
	}
	return RefHeadsPrefix + p.Branch
}

// TriggerRule binds the target repository and the branch policy. It is
// built once at startup and shared read-only by every request.
type TriggerRule struct {
	Repository string
	Policy     BranchPolicy
}

// Decide computes whether event should start a build.
// Repository comparison is exact and case-sensitive; an absent repository never matches.
func (r TriggerRule) Decide(event *PushEvent) *TriggerDecision {
	decision := &TriggerDecision{}
	if event == nil {
		return decision
	}

	decision.Repository = event.RepositoryFullName
	decision.Ref = event.Ref
	decision.DeliveryID = event.DeliveryID

	if event.RepositoryFullName == "" || event.RepositoryFullName != r.Repository {
		return decision
	}

	branch, ok := r.Policy.Match(event.Ref)
	if !ok {
		return decision
	}

	decision.ShouldBuild = true
	decision.Branch = branch
	return decision
}
