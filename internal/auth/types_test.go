package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRole(t *testing.T) {
	id := &Identity{Attributes: map[string]interface{}{"role": "admin"}}
	assert.Equal(t, "admin", id.Role())

	id = &Identity{Attributes: map[string]interface{}{}}
	assert.Empty(t, id.Role())

	// A non-string claim is treated as absent
	id = &Identity{Attributes: map[string]interface{}{"role": 42}}
	assert.Empty(t, id.Role())
}

func TestIdentityOrgIDs(t *testing.T) {
	id := &Identity{Attributes: map[string]interface{}{"orgs": []string{"org_1", "org_2"}}}
	assert.Equal(t, []string{"org_1", "org_2"}, id.OrgIDs())

	// Claims decoded from JSON arrive untyped
	id = &Identity{Attributes: map[string]interface{}{"orgs": []interface{}{"org_1", 7, "org_2"}}}
	assert.Equal(t, []string{"org_1", "org_2"}, id.OrgIDs())

	id = &Identity{Attributes: map[string]interface{}{}}
	assert.Empty(t, id.OrgIDs())
}

func TestIdentityMemberOf(t *testing.T) {
	id := &Identity{Attributes: map[string]interface{}{"orgs": []string{"org_1"}}}

	assert.True(t, id.MemberOf("org_1"))
	assert.False(t, id.MemberOf("org_2"))
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{Subject: "u1"}

	ctx := ContextWithIdentity(t.Context(), id)

	assert.Equal(t, id, IdentityFromContext(ctx))
	assert.Nil(t, IdentityFromContext(t.Context()))
}
