// internal/authz/guard.go
package authz

import (
	"net/http"
	"regexp"
	"strings"

	"catshelter/internal/auth"
	"catshelter/internal/observability/logging"
	"catshelter/internal/observability/metrics"

	"github.com/gorilla/mux"
)

// Route variable names the guard understands.
const (
	// OrgSlugVar is the route variable carrying an organization slug
	OrgSlugVar = "orgSlug"

	// UserIDVar is the route variable carrying a user id
	UserIDVar = "userId"
)

// Guard decides allow/deny for each inbound request. The decision is
// fail-closed: missing identity, missing rule configuration, and any
// internal failure all deny.
type Guard struct {
	publicRoutes *regexp.Regexp
	orgs         OrgResolver
	registry     *Registry
	logger       *logging.Logger
	metrics      *metrics.Collector
}

// Config holds guard configuration
type Config struct {
	// PublicRoutes matches request paths that bypass authorization entirely
	PublicRoutes *regexp.Regexp
}

// NewGuard creates a new guard.
func NewGuard(cfg Config, orgs OrgResolver, registry *Registry, logger *logging.Logger, collector *metrics.Collector) *Guard {
	return &Guard{
		publicRoutes: cfg.PublicRoutes,
		orgs:         orgs,
		registry:     registry,
		logger:       logger.WithModule("authz.guard"),
		metrics:      collector,
	}
}

// Decide evaluates the authorization rules for the matched route and returns
// Allow or Deny. It never panics: any internal failure is logged and
// converted to Deny.
func (g *Guard) Decide(r *http.Request) (decision Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("Authorization check panicked, denying", "panic", rec)
			decision = Deny
		}
	}()

	if r == nil {
		g.logger.Error("Authorization check invoked without a request, denying")
		return Deny
	}

	// Public routes skip every other check, identity included
	if g.publicRoutes != nil && g.publicRoutes.MatchString(r.URL.Path) {
		return Allow
	}

	ctx := r.Context()
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = g.logger
	}

	identity := auth.IdentityFromContext(ctx)
	if identity == nil {
		logger.Debug("Authorization denied: no identity in context", "path", r.URL.Path)
		return Deny
	}

	vars := mux.Vars(r)

	// An unknown slug is not an error: rules run with no org id
	orgID := ""
	if slug := vars[OrgSlugVar]; slug != "" {
		id, err := g.orgs.ResolveSlug(ctx, slug)
		if err != nil {
			logger.Error("Organization lookup failed, denying", logging.Err(err), "slug", slug)
			return Deny
		}
		orgID = id
	}

	userID := vars[UserIDVar]

	handler, controller := routeIdentity(r)
	rules, err := g.registry.Resolve(ctx, handler, controller)
	if err != nil {
		logger.Error("Rule resolution failed, denying", logging.Err(err), "handler", handler)
		return Deny
	}

	if len(rules) == 0 {
		logger.Debug("No rules configured for route, denying", "handler", handler, "controller", controller)
		g.record(handler, Deny)
		return Deny
	}

	target := Target{
		Identity: identity,
		OrgID:    orgID,
		UserID:   userID,
	}

	for _, rule := range rules {
		ok, err := rule.Allows(ctx, target)
		if err != nil {
			logger.Error("Rule evaluation failed, denying",
				logging.Err(err),
				"rule", rule.Name(),
				"subject", identity.Subject,
			)
			if g.metrics != nil {
				g.metrics.RecordRuleEvaluation(rule.Name(), false)
			}
			g.record(handler, Deny)
			return Deny
		}
		if g.metrics != nil {
			g.metrics.RecordRuleEvaluation(rule.Name(), ok)
		}
		if !ok {
			logger.Info("Authorization denied by rule",
				"rule", rule.Name(),
				"subject", identity.Subject,
				"handler", handler,
			)
			g.record(handler, Deny)
			return Deny
		}
	}

	g.record(handler, Allow)
	return Allow
}

// Middleware intercepts requests and rejects the denied ones. A denial
// without an identity on a non-public route maps to 401, every other denial
// to 403.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch g.Decide(r) {
		case Allow:
			next.ServeHTTP(w, r)
		default:
			if auth.IdentityFromContext(r.Context()) == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	})
}

func (g *Guard) record(handler string, decision Decision) {
	if g.metrics != nil {
		g.metrics.RecordDecision(handler, decision.String())
	}
}

// routeIdentity derives the handler and controller identities from the
// matched route. Handlers are named "controller.action"; the controller is
// the part before the first dot. Unmatched routes yield empty identities and
// therefore deny.
func routeIdentity(r *http.Request) (handler, controller string) {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "", ""
	}
	handler = route.GetName()
	if i := strings.Index(handler, "."); i > 0 {
		controller = handler[:i]
	} else {
		controller = handler
	}
	return handler, controller
}
