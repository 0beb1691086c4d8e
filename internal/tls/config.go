// internal/tls/config.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"catshelter/internal/observability/logging"
)

// Config holds the TLS configuration
type Config struct {
	// Logger is the logger to use
	Logger *logging.Logger

	// RootCAPath is the path to the root CA certificate
	RootCAPath string

	// CertPath is the path to the server certificate
	CertPath string

	// KeyPath is the path to the server key
	KeyPath string
}

// GetTLSConfig creates a TLS configuration for the server
func (c *Config) GetTLSConfig() (*tls.Config, error) {
	c.Logger.Debug("Initializing TLS configuration")

	cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load server key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	// Load root CA if provided
	if c.RootCAPath != "" {
		rootCA, err := os.ReadFile(c.RootCAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read root CA file: %w", err)
		}
		rootCAPool := x509.NewCertPool()
		if !rootCAPool.AppendCertsFromPEM(rootCA) {
			return nil, fmt.Errorf("failed to parse root CA file: %s", c.RootCAPath)
		}
		tlsConfig.ClientCAs = rootCAPool
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
		c.Logger.Debug("Root CA loaded for TLS", "RootCAFile", c.RootCAPath)
	}

	c.Logger.Info("TLS configuration successful")
	return tlsConfig, nil
}
