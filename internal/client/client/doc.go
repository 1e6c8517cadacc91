// Package client is the HTTP client for the msgboard API used by the CLI.
//
// Responses are mapped to the sentinel errors in errors.go: 401 becomes
// ErrUnauthorized, 403 ErrForbidden, 404 ErrNotFound, other 4xx ErrRejected
// (wrapping the server's message) and transport failures or 5xx
// ErrUnavailable.
package client
