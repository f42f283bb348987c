// Package common contains constants and small helpers shared by the
// prodauth client packages.
package common

const (
	// AuthorizationHeader carries the bearer token on authenticated requests.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// TokenStorageKey is the fixed key the access token is persisted under.
	TokenStorageKey = "auth_token"

	// TokenSavedAtKey records when TokenStorageKey was last written.
	TokenSavedAtKey = "auth_token_saved_at"
)
