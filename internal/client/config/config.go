package config

import "time"

const (
	EnvServer = "MAILRELAY_SERVER"
	EnvToken  = "MAILRELAY_TOKEN"
)

// Config holds runtime settings for the mailrelay CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the relay's HTTP surface.
//   - RequestTimeout: bound on one call to the relay.
//   - Token: session token sent as a bearer credential.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	Token              string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8000"
	c.RequestTimeout = 30 * time.Second
	c.Token = ""
}

// ApplyEnv overlays values found through getenv; empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvServer); v != "" {
		c.ServerEndpointAddr = v
	}
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
}

// LoadConfig applies defaults, then the JSON file at path (if any), then
// the environment.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	return cfg, nil
}
