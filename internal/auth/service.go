// Package auth provides the rules for registration, authentication and
// profile management.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/mdewit/matchbox/internal/errorz"
	"github.com/mdewit/matchbox/internal/krypto"
)

var (
	// ErrDuplicateEmail indicates the email address is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email addresses and wrong
	// passwords. Callers must not distinguish between the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// DefaultMatchLimit is the maximum number of matches shown on the dashboard.
const DefaultMatchLimit = 12

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// Argon2Params are the cost parameters used for new password hashes.
	Argon2Params krypto.Argon2Params
	// MatchLimit caps the dashboard match list. Defaults to DefaultMatchLimit.
	MatchLimit int
}

// Service provides the main rules for authentication and profiles.
type Service struct {
	store Store
	cfg   ServiceConfig

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash krypto.Argon2Hash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store, cfg ServiceConfig) (*Service, error) {
	if cfg.Argon2Params == (krypto.Argon2Params{}) {
		cfg.Argon2Params = krypto.DefaultArgon2Params
	}

	if cfg.MatchLimit <= 0 {
		cfg.MatchLimit = DefaultMatchLimit
	}

	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("failed to generate comparison value: %w", err)
	}

	hash, err := krypto.HashArgon2WithParams(random, cfg.Argon2Params)
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison hash: %w", err)
	}

	return &Service{
		store:          store,
		cfg:            cfg,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}, nil
}

// RegisterUser creates a new account and returns it.
//
// The uniqueness of the email address is decided by the store constraint,
// not by a lookup beforehand. A pre-check would race with concurrent
// registrations for the same address.
func (s *Service) RegisterUser(ctx context.Context, reg Registration) (User, error) {
	pwdHash, err := reg.Password.Hash(s.cfg.Argon2Params)
	if err != nil {
		return User{}, err
	}

	user := User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: pwdHash,
		Bio:          reg.Bio,
		CreatedAt:    s.NowFunc(),
	}

	err = s.store.CreateUser(ctx, &user)
	if err != nil {
		if errors.Is(err, errorz.ErrConstraintViolated) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}

	return user, nil
}

// Authenticate checks the provided credentials and returns the matching
// user. It returns ErrInvalidCredentials when the email is unknown or the
// password is wrong, without revealing which of the two it was.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (User, error) {
	user, err := s.store.FindUserByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			// Even if no user is found we compare to a hash to prevent
			// timing differences that could result in user enumeration
			// attacks.
			_ = c.Password.Match(s.comparisonHash)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !c.Password.Match(user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Profile returns the user with the given id.
func (s *Service) Profile(ctx context.Context, userID int) (User, error) {
	return s.store.FindUserByID(ctx, userID)
}

// UpdateProfile changes the name and bio of the user with the given id.
// Email, id and registration time are not touched.
func (s *Service) UpdateProfile(ctx context.Context, userID int, update ProfileUpdate) error {
	return s.store.UpdateProfile(ctx, userID, update)
}

// Dashboard returns the current user and their match list: everyone else,
// newest first, capped at the configured limit.
func (s *Service) Dashboard(ctx context.Context, userID int) (User, []Match, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return User{}, nil, err
	}

	matches, err := s.store.ListMatches(ctx, userID, s.cfg.MatchLimit)
	if err != nil {
		return User{}, nil, err
	}

	return user, matches, nil
}
