// Package sessions wraps gorilla/sessions behind the small surface the
// web handlers need: a user id, flash messages and a synchronous destroy.
package sessions

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/mdewit/matchbox/internal/krypto"
)

const CookieName = "mb-session"

// Store hands out sessions backed by an authenticated client-side cookie.
type Store struct {
	base sessions.Store
}

// NewCookieStore creates a store that signs its cookies with the given key.
func NewCookieStore(key krypto.Key, secureCookie bool) *Store {
	base := sessions.NewCookieStore(key.SecretValue())
	base.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{base: base}
}

// Get returns the session for the request, a new empty one if the request
// has no session cookie. A cookie that fails to decode (tampered with, or
// signed with a rotated key) is treated as no session rather than an error.
func (s *Store) Get(r *http.Request) *Session {
	base, err := s.base.Get(r, CookieName)
	if err != nil {
		// gorilla/sessions returns a fresh session alongside decode
		// errors, which is exactly what we want to continue with.
		return &Session{base: base}
	}

	return &Session{base: base}
}

// Save writes the session to the response.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	err := s.base.Save(r, w, sess.base)
	if err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}

// Destroy removes all session state and expires the cookie.
func (s *Store) Destroy(r *http.Request, w http.ResponseWriter, sess *Session) error {
	for k := range sess.base.Values {
		delete(sess.base.Values, k)
	}

	// Setting the age in the past deletes the cookie client-side.
	sess.base.Options.MaxAge = -1

	return s.Save(r, w, sess)
}
