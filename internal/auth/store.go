package auth

import (
	"context"

	"github.com/mdewit/matchbox/internal/email"
)

// Store provides access to the user store. Implementations must be safe
// for concurrent use; the store itself serializes conflicting writes.
type Store interface {
	// CreateUser persists a new user and sets its ID.
	// A duplicate email address surfaces as errorz.ErrConstraintViolated.
	CreateUser(ctx context.Context, u *User) error

	// FindUserByEmail returns errorz.ErrNotFound when no user has the
	// given email address.
	FindUserByEmail(ctx context.Context, addr email.Address) (User, error)

	// FindUserByID returns errorz.ErrNotFound when no user has the
	// given id.
	FindUserByID(ctx context.Context, id int) (User, error)

	// UpdateProfile mutates the name and bio of the user with the given
	// id, nothing else. It returns errorz.ErrNotFound on an unknown id.
	UpdateProfile(ctx context.Context, id int, update ProfileUpdate) error

	// ListMatches returns everyone except the user with excludeID,
	// most recently registered first, capped at limit.
	ListMatches(ctx context.Context, excludeID, limit int) ([]Match, error)
}
