package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelStatus     = "status"
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelHandler    = "handler"
	LabelDecision   = "decision"
	LabelRule       = "rule"
	LabelAuth       = "auth_type"
	LabelSuccess    = "success"
	LabelBackend    = "backend"
	LabelOperation  = "operation"
	LabelCollection = "collection"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catshelter_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// AuthenticationTotal counts authentication attempts by type and outcome
	AuthenticationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_authentication_total",
			Help: "Total number of authentication attempts",
		},
		[]string{LabelAuth, LabelSuccess},
	)

	// AuthorizationTotal counts guard decisions by handler and outcome
	AuthorizationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_authorization_total",
			Help: "Total number of authorization decisions",
		},
		[]string{LabelHandler, LabelDecision},
	)

	// RuleEvaluationTotal counts individual rule evaluations by rule name and outcome
	RuleEvaluationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_rule_evaluation_total",
			Help: "Total number of authorization rule evaluations",
		},
		[]string{LabelRule, LabelSuccess},
	)

	// RuleSetCacheTotal counts rule-set cache lookups by outcome (hit/miss)
	RuleSetCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_ruleset_cache_total",
			Help: "Total number of rule-set cache lookups",
		},
		[]string{"outcome"},
	)

	// CacheOperationsTotal counts byte-cache operations by backend and outcome
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catshelter_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{LabelBackend, LabelOperation, "outcome"},
	)

	// RepositoryQueryDuration tracks document store query durations
	RepositoryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catshelter_repository_query_duration_seconds",
			Help:    "Duration of document store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelCollection, LabelOperation},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthentication records an authentication attempt
func (c *Collector) RecordAuthentication(authType string, success bool) {
	AuthenticationTotal.WithLabelValues(authType, boolToString(success)).Inc()
}

// RecordDecision records a guard decision for a handler
func (c *Collector) RecordDecision(handler, decision string) {
	AuthorizationTotal.WithLabelValues(handler, decision).Inc()
}

// RecordRuleEvaluation records a single rule evaluation
func (c *Collector) RecordRuleEvaluation(rule string, passed bool) {
	RuleEvaluationTotal.WithLabelValues(rule, boolToString(passed)).Inc()
}

// RecordRuleSetCache records a rule-set cache lookup outcome
func (c *Collector) RecordRuleSetCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	RuleSetCacheTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheOperation records a byte-cache operation
func (c *Collector) RecordCacheOperation(backend, operation, outcome string) {
	CacheOperationsTotal.WithLabelValues(backend, operation, outcome).Inc()
}

// RecordRepositoryQuery records a document store query
func (c *Collector) RecordRepositoryQuery(collection, operation string, duration time.Duration) {
	RepositoryQueryDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// boolToString converts a boolean to a string representation
func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
