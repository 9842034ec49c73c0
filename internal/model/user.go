// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// WHY CreatedAt string (not time.Time)?
// The durable backend stores collections as plain JSON files, and the
// canonical timestamp format there is an ISO-8601 string (RFC 3339). Keeping
// the field a string means the file on disk and the API response are
// byte-for-byte the same representation — no timezone surprises when a file
// written by one process is read back by another.
//
// Password holds the bcrypt hash, never the plaintext. It is tagged
// `json:"password"` because the durable backend round-trips the full record,
// but API responses must always go through Sanitized() so the hash never
// leaves the server.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"` // bcrypt hash
	CreatedAt string `json:"createdAt"`
}

// SanitizedUser is the API-facing shape of a User — identical minus the
// password hash.
type SanitizedUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// Sanitized returns a copy of the user safe to include in API responses.
func (u User) Sanitized() SanitizedUser {
	return SanitizedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
