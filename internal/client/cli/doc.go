// Package cli provides the mailrelay command-line client.
//
// It is a cobra command tree over the client package. Each subcommand maps
// to one relay route:
//   - register, login, me, provider-token
//   - create-address, list, get, send, delete, domains
//
// login prints the session token; later commands take it from --token or
// MAILRELAY_TOKEN. Passwords and provider tokens are read without echo.
package cli
