// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a login identity. CredentialHash is the bcrypt hash of the shared
// system password, so it never distinguishes one user from another.
type User struct {
	ID             int64
	LoginName      string
	CredentialHash string
	CreatedAt      time.Time
}
