// Package config handles configuration for the relay server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the relay server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP surface.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint; empty disables it.
//   - MetricsAddr: bind address for the Prometheus listener; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory user store.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: session token lifetime.
//   - ProviderBaseURL: root of the remote mail provider API.
//   - ProviderTimeout: per-call timeout for provider requests.
//   - Folders: names accepted by GET /emails/{folder}; other values are message ids.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	MetricsAddr                 string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ProviderBaseURL             string
	ProviderTimeout             time.Duration
	Folders                     []string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.ProviderBaseURL = "https://api.mail.tm"
	c.ProviderTimeout = 30 * time.Second
	c.Folders = []string{"inbox", "sent", "drafts", "trash", "spam", "all"}
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
