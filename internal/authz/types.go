// internal/authz/types.go
package authz

import (
	"context"

	"catshelter/internal/auth"
)

// Decision represents an authorization decision
type Decision int

const (
	// Deny indicates the request is denied. Deny is the zero value so that
	// every path that fails to decide explicitly fails closed.
	Deny Decision = iota

	// Allow indicates the request is allowed
	Allow
)

// String returns the decision label used in logs and metrics
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Target is what a rule decides about: the caller's identity plus the
// identifiers of the addressed resource. OrgID and UserID may be empty when
// the route carries no such parameter or the organization slug did not
// resolve.
type Target struct {
	// Identity is the authenticated caller
	Identity *auth.Identity

	// OrgID is the internal id of the organization addressed by the route
	OrgID string

	// UserID is the user id taken from the route parameters
	UserID string
}

// Rule is a predicate deciding whether a target may be acted on. Rules are
// evaluated in registration order; the first rule that does not allow ends
// evaluation.
type Rule interface {
	// Name identifies the rule in logs and metrics
	Name() string

	// Allows reports whether the target is permitted. An error is treated
	// as a denial by the caller.
	Allows(ctx context.Context, target Target) (bool, error)
}

// RuleFunc adapts a function to the Rule interface
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, target Target) (bool, error)
}

// Name returns the rule name
func (r RuleFunc) Name() string { return r.RuleName }

// Allows invokes the wrapped function
func (r RuleFunc) Allows(ctx context.Context, target Target) (bool, error) {
	return r.Fn(ctx, target)
}

// OrgResolver maps an externally visible organization slug to its internal
// id. Implementations return ("", nil) when no organization matches; an
// error means the lookup itself failed.
type OrgResolver interface {
	ResolveSlug(ctx context.Context, slug string) (string, error)
}
