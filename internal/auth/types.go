// internal/auth/types.go
package auth

import (
	"net/http"

	"golang.org/x/exp/slices"
)

// Identity represents an authenticated identity
type Identity struct {
	// Subject is the unique identifier for this identity
	Subject string

	// Provider is the authentication provider (e.g., "bearer")
	Provider string

	// Attributes contains additional identity claims
	Attributes map[string]interface{}
}

// Role returns the role claim, or the empty string when absent
func (i *Identity) Role() string {
	if role, ok := i.Attributes["role"].(string); ok {
		return role
	}
	return ""
}

// OrgIDs returns the organization memberships claimed by this identity
func (i *Identity) OrgIDs() []string {
	switch v := i.Attributes["orgs"].(type) {
	case []string:
		return v
	case []interface{}:
		orgs := make([]string, 0, len(v))
		for _, o := range v {
			if s, ok := o.(string); ok {
				orgs = append(orgs, s)
			}
		}
		return orgs
	}
	return nil
}

// MemberOf reports whether the identity claims membership in the organization
func (i *Identity) MemberOf(orgID string) bool {
	return slices.Contains(i.OrgIDs(), orgID)
}

// Authenticator defines the interface for authentication methods
type Authenticator interface {
	// Name returns the name of this authenticator
	Name() string

	// GetMiddleware returns an http.Handler middleware that performs authentication
	GetMiddleware(next http.Handler) http.Handler
}
