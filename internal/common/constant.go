package common

// AuthorizationHeaderName carries "Bearer <token>" on both the local surface
// and the provider calls.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// TokenType is reported next to issued access tokens.
const TokenType = "bearer"
