// Package mailtm is the HTTP client for the remote transactional-mail
// provider (the mail.tm API contract).
//
// Each operation is one request. A Client is bound to a single delegated
// bearer token and is cheap to build; Factory shares the underlying
// *http.Client (and so its connection pool) across them.
//
// Errors:
//   - 404 from GetMessage: common.ErrRemoteNotFound
//   - any other non-2xx (404 included): *ProviderError, matching common.ErrProviderRejected
//   - network failure, timeout or an unreadable body: common.ErrTransport
//
// Nothing is retried.
package mailtm
