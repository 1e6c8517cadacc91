// Package common contains shared constants and sentinel errors used across
// msgboard components.
package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// EnvPrefix namespaces environment variables read by the server and the CLI.
const EnvPrefix = "MSGBOARD_"
