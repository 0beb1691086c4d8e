package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"catshelter/internal/auth"
	"catshelter/internal/observability/logging"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrgResolver struct {
	bySlug map[string]string
	err    error
	calls  int
}

func (f *fakeOrgResolver) ResolveSlug(_ context.Context, slug string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.bySlug[slug], nil
}

// recordingRule remembers the targets it was evaluated against.
type recordingRule struct {
	name    string
	allow   bool
	err     error
	mu      sync.Mutex
	targets []Target
}

func (r *recordingRule) Name() string { return r.name }

func (r *recordingRule) Allows(_ context.Context, target Target) (bool, error) {
	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
	return r.allow, r.err
}

func (r *recordingRule) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

type guardFixture struct {
	guard  *Guard
	source *StaticSource
	orgs   *fakeOrgResolver
	router *mux.Router
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	source := NewStaticSource()
	orgs := &fakeOrgResolver{bySlug: map[string]string{"acme": "org_1"}}
	registry := NewRegistry(source, time.Hour, nil)
	guard := NewGuard(Config{
		PublicRoutes: regexp.MustCompile("^/healthz$"),
	}, orgs, registry, logger, nil)

	router := mux.NewRouter()
	router.Use(guard.Middleware)
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	router.HandleFunc("/healthz", ok).Name("health.check")
	router.HandleFunc("/orgs/{orgSlug}/cats", ok).Name("cats.list")
	router.HandleFunc("/cats/{id}", ok).Name("cats.get")
	router.HandleFunc("/users/{userId}/cats", ok).Name("cats.adopted")

	return &guardFixture{guard: guard, source: source, orgs: orgs, router: router}
}

func (f *guardFixture) do(t *testing.T, method, path string, identity *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if identity != nil {
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func identityFor(subject string, orgs ...string) *auth.Identity {
	return &auth.Identity{
		Subject:  subject,
		Provider: "bearer",
		Attributes: map[string]interface{}{
			"orgs": orgs,
		},
	}
}

func TestGuardPublicRouteAllowsWithoutIdentity(t *testing.T) {
	f := newGuardFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardDeniesWithoutIdentity(t *testing.T) {
	f := newGuardFixture(t)
	f.source.SetHandlerRules("cats.get", &recordingRule{name: "pass", allow: true})

	rec := f.do(t, http.MethodGet, "/cats/abc", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardDeniesWithoutConfiguredRules(t *testing.T) {
	f := newGuardFixture(t)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardDeniesOnEmptyRuleSet(t *testing.T) {
	f := newGuardFixture(t)
	// Registered but empty is identical to not registered at all
	f.source.SetHandlerRules("cats.get")

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardHandlerRulesShadowControllerRules(t *testing.T) {
	f := newGuardFixture(t)
	controllerRule := &recordingRule{name: "controller", allow: true}
	handlerRule := &recordingRule{name: "handler", allow: false}
	f.source.SetControllerRules("cats", controllerRule)
	f.source.SetHandlerRules("cats.get", handlerRule)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	// The passing controller rule must not rescue the denying handler rule
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, controllerRule.calls())
	assert.Equal(t, 1, handlerRule.calls())
}

func TestGuardFallsBackToControllerRules(t *testing.T) {
	f := newGuardFixture(t)
	controllerRule := &recordingRule{name: "controller", allow: true}
	f.source.SetControllerRules("cats", controllerRule)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, controllerRule.calls())
}

func TestGuardShortCircuitsOnFirstFailingRule(t *testing.T) {
	f := newGuardFixture(t)
	first := &recordingRule{name: "first", allow: true}
	second := &recordingRule{name: "second", allow: false}
	third := &recordingRule{name: "third", allow: true}
	f.source.SetHandlerRules("cats.get", first, second, third)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, first.calls())
	assert.Equal(t, 1, second.calls())
	assert.Equal(t, 0, third.calls(), "rules after the failing one must not run")
}

func TestGuardAllowsWhenAllRulesPass(t *testing.T) {
	f := newGuardFixture(t)
	first := &recordingRule{name: "first", allow: true}
	second := &recordingRule{name: "second", allow: true}
	f.source.SetHandlerRules("cats.get", first, second)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, first.calls())
	assert.Equal(t, 1, second.calls())
}

func TestGuardResolvesOrgSlugForRules(t *testing.T) {
	f := newGuardFixture(t)
	rule := &recordingRule{name: "probe", allow: true}
	f.source.SetHandlerRules("cats.list", rule)

	rec := f.do(t, http.MethodGet, "/orgs/acme/cats", identityFor("u1", "org_1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, rule.calls())
	assert.Equal(t, "org_1", rule.targets[0].OrgID)
}

func TestGuardUnknownSlugYieldsEmptyOrgID(t *testing.T) {
	f := newGuardFixture(t)
	rule := &recordingRule{name: "probe", allow: true}
	f.source.SetHandlerRules("cats.list", rule)

	rec := f.do(t, http.MethodGet, "/orgs/nosuch/cats", identityFor("u1"))

	// Absence of the organization alone must not deny
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, rule.calls())
	assert.Empty(t, rule.targets[0].OrgID)
}

func TestGuardPassesUserIDFromRoute(t *testing.T) {
	f := newGuardFixture(t)
	rule := &recordingRule{name: "probe", allow: true}
	f.source.SetHandlerRules("cats.adopted", rule)

	rec := f.do(t, http.MethodGet, "/users/u42/cats", identityFor("u42"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, rule.calls())
	assert.Equal(t, "u42", rule.targets[0].UserID)
}

func TestGuardDeniesOnOrgLookupError(t *testing.T) {
	f := newGuardFixture(t)
	f.orgs.err = errors.New("database unreachable")
	rule := &recordingRule{name: "probe", allow: true}
	f.source.SetHandlerRules("cats.list", rule)

	rec := f.do(t, http.MethodGet, "/orgs/acme/cats", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, rule.calls())
}

func TestGuardDeniesOnRuleError(t *testing.T) {
	f := newGuardFixture(t)
	failing := &recordingRule{name: "boom", err: errors.New("rule backend down")}
	rest := &recordingRule{name: "rest", allow: true}
	f.source.SetHandlerRules("cats.get", failing, rest)

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, rest.calls())
}

func TestGuardDeniesOnPanickingRule(t *testing.T) {
	f := newGuardFixture(t)
	f.source.SetHandlerRules("cats.get", RuleFunc{
		RuleName: "panics",
		Fn: func(context.Context, Target) (bool, error) {
			panic("unexpected")
		},
	})

	rec := f.do(t, http.MethodGet, "/cats/abc", identityFor("u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardDecideNilRequestDenies(t *testing.T) {
	f := newGuardFixture(t)

	assert.Equal(t, Deny, f.guard.Decide(nil))
}
