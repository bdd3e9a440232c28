// Package db implements auth.Store on top of a SQLite database.
package db

import (
	"context"
	"database/sql"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/email"
)

// Store is responsible for interacting with the users table.
type Store struct {
	db *sql.DB
}

// New creates a new Store.
func New(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	return insertUser(s.exec(ctx), u)
}

func (s *Store) FindUserByEmail(ctx context.Context, addr email.Address) (auth.User, error) {
	return selectUserByEmail(s.query(ctx), addr)
}

func (s *Store) FindUserByID(ctx context.Context, id int) (auth.User, error) {
	return selectUserByID(s.query(ctx), id)
}

func (s *Store) UpdateProfile(ctx context.Context, id int, update auth.ProfileUpdate) error {
	return updateProfile(s.exec(ctx), id, update)
}

func (s *Store) ListMatches(ctx context.Context, excludeID, limit int) ([]auth.Match, error) {
	return selectMatches(s.query(ctx), excludeID, limit)
}

func (s *Store) exec(ctx context.Context) execFunc {
	return func(query string, params ...any) (sql.Result, error) {
		return s.db.ExecContext(ctx, query, params...)
	}
}

func (s *Store) query(ctx context.Context) queryFunc {
	return func(query string, params ...any) (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query, params...)
	}
}
