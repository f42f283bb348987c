// Package client contains the transport layer of the prodauth CLI.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface) for the product
//     authentication backend: Login/Logout/Me/Refresh, Verify, Stats and
//     CertificatePDF.
//  2. A concrete HTTP+JSON implementation (see HTTPClient) that stamps every
//     request with a request ID, attaches the bearer token of the attached
//     Authenticator and tells it when the server answers 401.
//  3. Resource, a generic REST binding used for customers, products and
//     certificates.
//  4. Local persistence bootstrap utilities (InitDatabase, RunMigrations) that
//     open an SQLite database and apply embedded goose migrations.
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. Common conditions match sentinel
// errors with errors.Is: ErrUnavailable, ErrTimeout, ErrUnauthorized,
// ErrInvalidCredentials, ErrValidation. DisplayMessage turns any error into
// text fit for the terminal.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; the configured timeout bounds each
// request.
package client
