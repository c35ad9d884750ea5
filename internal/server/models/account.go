// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered identity. PasswordHash holds a bcrypt hash.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	FullName     string
	AvatarKey    string
	CreatedAt    time.Time
}

// Metadata returns the profile metadata exposed with the identity.
func (a *Account) Metadata() map[string]string {
	if a.FullName == "" {
		return map[string]string{}
	}
	return map[string]string{"full_name": a.FullName}
}
