package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC health bind address, "" disables
//	-m string   metrics bind address, "" disables
//	-d string   PostgreSQL DSN, "" for the in-memory store
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-p string   provider base URL
//	-o int      provider call timeout, seconds
//	-f string   comma-separated folder names
//	-l string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-m", "-d", "-s", "-t", "-p", "-o", "-f", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port for gRPC health")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.ProviderBaseURL, "p", config.ProviderBaseURL, "mail provider base URL")
	providerTimeout := fs.Int("o", int(config.ProviderTimeout.Seconds()), "provider timeout (in seconds)")
	folders := fs.String("f", strings.Join(config.Folders, ","), "comma-separated folder names")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t, -o and -f only override earlier sources when given; their
	// defaults are lossy renderings of the current values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "o":
			config.ProviderTimeout = time.Duration(*providerTimeout) * time.Second
		case "f":
			config.Folders = splitFolders(*folders)
		}
	})
}

func splitFolders(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
