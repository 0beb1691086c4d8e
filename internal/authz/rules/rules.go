// internal/authz/rules/rules.go

// Package rules holds the concrete authorization rules evaluated by the
// guard. Each rule decides a single predicate; routes compose them in order.
package rules

import (
	"context"

	"catshelter/internal/authz"
)

// Authenticated allows any target that carries an identity. It exists so a
// route can be opened to every signed-in caller without weakening the
// guard's fail-closed default.
type Authenticated struct{}

// Name returns the rule name
func (Authenticated) Name() string { return "authenticated" }

// Allows reports whether an identity is present
func (Authenticated) Allows(_ context.Context, target authz.Target) (bool, error) {
	return target.Identity != nil, nil
}

// OrgMember allows callers whose identity claims membership in the
// organization addressed by the route. A route without a resolved org id is
// denied by this rule.
type OrgMember struct{}

// Name returns the rule name
func (OrgMember) Name() string { return "org-member" }

// Allows checks the membership claim against the resolved org id
func (OrgMember) Allows(_ context.Context, target authz.Target) (bool, error) {
	if target.Identity == nil || target.OrgID == "" {
		return false, nil
	}
	return target.Identity.MemberOf(target.OrgID), nil
}

// Self allows callers acting on their own user id.
type Self struct{}

// Name returns the rule name
func (Self) Name() string { return "self" }

// Allows checks that the addressed user is the caller
func (Self) Allows(_ context.Context, target authz.Target) (bool, error) {
	if target.Identity == nil || target.UserID == "" {
		return false, nil
	}
	return target.Identity.Subject == target.UserID, nil
}

// Role allows callers whose identity carries one of the accepted roles.
type Role struct {
	// Accepted is the set of roles that pass
	Accepted []string
}

// Name returns the rule name
func (Role) Name() string { return "role" }

// Allows checks the role claim
func (r Role) Allows(_ context.Context, target authz.Target) (bool, error) {
	if target.Identity == nil {
		return false, nil
	}
	role := target.Identity.Role()
	for _, accepted := range r.Accepted {
		if role == accepted {
			return true, nil
		}
	}
	return false, nil
}

// AnyOf allows when at least one of the wrapped rules allows. Errors from
// wrapped rules are swallowed into a false vote; the composite only errors
// when every wrapped rule errors.
type AnyOf struct {
	Rules []authz.Rule
}

// Name returns the rule name
func (AnyOf) Name() string { return "any-of" }

// Allows evaluates the wrapped rules in order
func (a AnyOf) Allows(ctx context.Context, target authz.Target) (bool, error) {
	var lastErr error
	errs := 0
	for _, rule := range a.Rules {
		ok, err := rule.Allows(ctx, target)
		if err != nil {
			lastErr = err
			errs++
			continue
		}
		if ok {
			return true, nil
		}
	}
	if errs > 0 && errs == len(a.Rules) {
		return false, lastErr
	}
	return false, nil
}
