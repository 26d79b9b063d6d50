// Package config loads runtime configuration for the mailrelay CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see (*Config).LoadFile), chosen with --config.
//  3. Environment: MAILRELAY_SERVER and MAILRELAY_TOKEN (see (*Config).ApplyEnv).
//  4. Command-line flags, applied by the cli package.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8000",
//	  "request_timeout": "30s"
//	}
package config
