// Package cli provides the interactive msgboard command-line client.
//
// The REPL is started via App.Run(ctx) and blocks until the user exits or
// stdin is closed. Reading the board and downloading attachments works
// without logging in; posting, editing and attaching require a session.
package cli
