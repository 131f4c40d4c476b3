package domain

import "time"

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated staff member.
type TokenIssuer interface {
	Issue(staffID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated staff ID.
type TokenVerifier interface {
	Verify(token string) (staffID string, err error)
}
