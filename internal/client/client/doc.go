// Package client is a Go client for the mailrelay HTTP surface.
//
// # Overview
//
// Login exchanges a user name and password for a session token and keeps
// it on the Client; every mailbox call then sends it as a bearer
// credential. Register, Me and SetProviderToken manage the local account.
//
// # Error Handling
//
// Non-2xx replies become *APIError. It unwraps to the matching sentinel in
// the common package (ErrInvalidCredential, ErrCredentialMissing,
// ErrRemoteNotFound, ErrProviderRejected, ErrTransport, ErrorAlreadyExists,
// ErrorValidation) so callers can use errors.Is. A relay that cannot be
// reached yields ErrUnavailable.
package client
