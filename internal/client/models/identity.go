// Package models holds the client-side view of identities and sessions.
package models

import "time"

// Identity is the read-only cached copy of an authenticated principal.
type Identity struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FullName  string            `json:"full_name"`
	AvatarKey string            `json:"avatar_key,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Session is a live authentication grant bound to one Identity.
type Session struct {
	Identity     *Identity `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Add(d).Before(s.ExpiresAt)
}

// Profile is the credential profile written at sign-up.
type Profile struct {
	ID                 string
	FullName           string
	SecurityQuestion   string
	SecurityAnswerHash string
}

// SessionEventKind names what caused a session change.
type SessionEventKind string

const (
	EventSignedIn       SessionEventKind = "SIGNED_IN"
	EventSignedOut      SessionEventKind = "SIGNED_OUT"
	EventTokenRefreshed SessionEventKind = "TOKEN_REFRESHED"
)

// SessionEvent is delivered to session-change subscribers. Session is nil
// for EventSignedOut.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *Session
}
