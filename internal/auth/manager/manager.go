// internal/auth/manager/manager.go
package manager

import (
	"fmt"
	"net/http"

	"catshelter/internal/auth"
	"catshelter/internal/auth/bearer"
	"catshelter/internal/config"
	"catshelter/internal/observability/logging"
	"catshelter/internal/observability/metrics"
)

// Manager coordinates the enabled authentication methods
type Manager struct {
	logger         *logging.Logger
	authenticators []auth.Authenticator
}

// NewManager creates a new authentication manager
func NewManager(authenticators []auth.Authenticator, logger *logging.Logger) *Manager {
	return &Manager{
		authenticators: authenticators,
		logger:         logger.WithModule("auth.manager"),
	}
}

// Middleware creates a middleware chain from all enabled authenticators
func (m *Manager) Middleware(next http.Handler) http.Handler {
	handler := next
	for _, authenticator := range m.authenticators {
		handler = authenticator.GetMiddleware(handler)
		m.logger.Debug("Added authenticator to middleware chain", "authenticator", authenticator.Name())
	}
	return handler
}

// GetAuthenticators returns the list of enabled authenticators
func (m *Manager) GetAuthenticators() []auth.Authenticator {
	return m.authenticators
}

// NewManagerFromConfig creates a Manager with authenticators configured from application config
func NewManagerFromConfig(cfg *config.Config, logger *logging.Logger, metrics *metrics.Collector) (*Manager, error) {
	logger = logger.WithModule("auth.factory")
	var authenticators []auth.Authenticator

	if cfg.Auth.Bearer.Enabled {
		bearerAuth, err := bearer.New(bearer.Config{
			Enabled:  true,
			Issuer:   cfg.Auth.Bearer.Issuer,
			ClientID: cfg.Auth.Bearer.ClientID,
		}, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Bearer authenticator: %w", err)
		}
		authenticators = append(authenticators, bearerAuth)
		logger.Info("Bearer authentication enabled")
	}

	if len(authenticators) == 0 {
		logger.Warn("No authentication methods enabled; only public routes will be reachable")
	}

	return NewManager(authenticators, logger), nil
}
