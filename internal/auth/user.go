package auth

import (
	"time"

	"github.com/mdewit/matchbox/internal/email"
	"github.com/mdewit/matchbox/internal/krypto"
)

// User contains the data for a registered account.
type User struct {
	ID           int
	Name         string
	Email        email.Address
	PasswordHash krypto.Argon2Hash
	Bio          string
	CreatedAt    time.Time
}

// Match is the projection of another user shown on the dashboard.
// It deliberately carries no id, email or hash.
type Match struct {
	Name string
	Bio  string
}

// Registration is the input for registering a new account.
type Registration struct {
	Name     string
	Email    email.Address
	Password Password
	Bio      string
}

// Credentials is the input for authenticating an existing account.
type Credentials struct {
	Email    email.Address
	Password Password
}

// ProfileUpdate is the input for editing a profile. Name and bio are the
// only fields an account owner can change.
type ProfileUpdate struct {
	Name string
	Bio  string
}
