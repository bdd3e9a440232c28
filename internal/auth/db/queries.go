package db

import (
	"database/sql"
	"fmt"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/db"
	"github.com/mdewit/matchbox/internal/email"
	"github.com/mdewit/matchbox/internal/errorz"
	"github.com/mdewit/matchbox/internal/krypto"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertUser(ef execFunc, u *auth.User) error {
	var q db.Query
	q.Unsafe(`INSERT INTO users (name, email, password_hash, bio, created_at) VALUES (`)
	q.Params(u.Name, string(u.Email), u.PasswordHash.String(), u.Bio, u.CreatedAt)
	q.Unsafe(`)`)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	u.ID = int(id)

	return nil
}

func selectUserByEmail(qf queryFunc, addr email.Address) (auth.User, error) {
	var q db.Query
	q.Unsafe(`SELECT id, name, email, password_hash, bio, created_at FROM users WHERE email = `)
	q.Param(string(addr))

	return selectOneUser(qf, &q)
}

func selectUserByID(qf queryFunc, id int) (auth.User, error) {
	var q db.Query
	q.Unsafe(`SELECT id, name, email, password_hash, bio, created_at FROM users WHERE id = `)
	q.Param(id)

	return selectOneUser(qf, &q)
}

func selectOneUser(qf queryFunc, q *db.Query) (auth.User, error) {
	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return auth.User{}, errorz.MapDBErr(err)
	}

	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return auth.User{}, errorz.MapDBErr(err)
		}
		return auth.User{}, fmt.Errorf("user not found: %w", errorz.ErrNotFound)
	}

	var (
		u       auth.User
		rawMail string
		rawHash string
	)
	if err := rows.Scan(&u.ID, &u.Name, &rawMail, &rawHash, &u.Bio, &u.CreatedAt); err != nil {
		return auth.User{}, errorz.MapDBErr(err)
	}

	u.Email = email.Address(rawMail)

	u.PasswordHash, err = krypto.ParseArgon2Hash(rawHash)
	if err != nil {
		return auth.User{}, fmt.Errorf("stored hash for user %d is invalid: %w", u.ID, err)
	}

	return u, nil
}

func updateProfile(ef execFunc, id int, update auth.ProfileUpdate) error {
	var q db.Query
	q.Unsafe(`UPDATE users SET name = `)
	q.Param(update.Name)
	q.Unsafe(`, bio = `)
	q.Param(update.Bio)
	q.Unsafe(` WHERE id = `)
	q.Param(id)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("user not found: %w", errorz.ErrNotFound)
	}

	return nil
}

func selectMatches(qf queryFunc, excludeID, limit int) ([]auth.Match, error) {
	var q db.Query
	q.Unsafe(`SELECT name, bio FROM users WHERE id != `)
	q.Param(excludeID)
	// id is the tiebreak for users registered in the same instant.
	q.Unsafe(` ORDER BY created_at DESC, id DESC LIMIT `)
	q.Param(limit)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.Match, 0)
	for rows.Next() {
		var m auth.Match
		if err := rows.Scan(&m.Name, &m.Bio); err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}
