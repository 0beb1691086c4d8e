// internal/authz/registry.go
package authz

import (
	"context"
	"sync"
	"time"

	"catshelter/internal/cache"
	"catshelter/internal/observability/metrics"
)

// DefaultRuleTTL is how long a resolved rule set stays cached. Route-to-rule
// mapping is static configuration, so a long TTL is safe.
const DefaultRuleTTL = 7 * 24 * time.Hour

// RuleSource exposes the rule configuration attached to handlers and
// controllers. The boolean reports whether any configuration exists for the
// key; an existing empty list and a missing list are both denied by the
// guard, but the distinction keeps lookups honest.
type RuleSource interface {
	// HandlerRules returns the ordered rules registered for a handler
	HandlerRules(handler string) ([]Rule, bool)

	// ControllerRules returns the ordered rules registered for a controller
	ControllerRules(controller string) ([]Rule, bool)
}

// StaticSource is an explicit registration side table populated at startup.
type StaticSource struct {
	mu          sync.RWMutex
	handlers    map[string][]Rule
	controllers map[string][]Rule
}

// NewStaticSource creates an empty rule source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		handlers:    make(map[string][]Rule),
		controllers: make(map[string][]Rule),
	}
}

// SetHandlerRules registers the ordered rule set for a handler, replacing
// any previous registration.
func (s *StaticSource) SetHandlerRules(handler string, rules ...Rule) {
	s.mu.Lock()
	s.handlers[handler] = rules
	s.mu.Unlock()
}

// SetControllerRules registers the ordered fallback rule set for a
// controller, replacing any previous registration.
func (s *StaticSource) SetControllerRules(controller string, rules ...Rule) {
	s.mu.Lock()
	s.controllers[controller] = rules
	s.mu.Unlock()
}

// HandlerRules returns the rules registered for a handler.
func (s *StaticSource) HandlerRules(handler string) ([]Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules, ok := s.handlers[handler]
	return rules, ok
}

// ControllerRules returns the rules registered for a controller.
func (s *StaticSource) ControllerRules(controller string) ([]Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules, ok := s.controllers[controller]
	return rules, ok
}

// Registry resolves the effective rule set for a matched route. Handler
// registrations fully shadow controller registrations; there is no merging.
// Resolutions are cached per handler/controller pair.
type Registry struct {
	source  RuleSource
	rules   *cache.Expiring[[]Rule]
	ttl     time.Duration
	metrics *metrics.Collector
}

// NewRegistry creates a registry over the given source. A ttl of 0 selects
// DefaultRuleTTL.
func NewRegistry(source RuleSource, ttl time.Duration, collector *metrics.Collector) *Registry {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	return &Registry{
		source:  source,
		rules:   cache.NewExpiring[[]Rule](),
		ttl:     ttl,
		metrics: collector,
	}
}

// Resolve returns the ordered rule set for the handler/controller pair,
// consulting the cache first. An empty result means no rules are configured.
func (r *Registry) Resolve(ctx context.Context, handler, controller string) ([]Rule, error) {
	key := handler + "|" + controller

	if rules, ok := r.rules.Get(key); ok {
		if r.metrics != nil {
			r.metrics.RecordRuleSetCache(true)
		}
		return rules, nil
	}
	if r.metrics != nil {
		r.metrics.RecordRuleSetCache(false)
	}

	return r.rules.GetOrCompute(ctx, key, r.ttl, func(context.Context) ([]Rule, error) {
		if rules, ok := r.source.HandlerRules(handler); ok {
			return rules, nil
		}
		rules, _ := r.source.ControllerRules(controller)
		return rules, nil
	})
}

// Invalidate drops the cached resolution for a handler/controller pair.
func (r *Registry) Invalidate(handler, controller string) {
	r.rules.Delete(handler + "|" + controller)
}

// SetClock replaces the cache time source; tests use this to force expiry.
func (r *Registry) SetClock(now func() time.Time) {
	r.rules.SetClock(now)
}
