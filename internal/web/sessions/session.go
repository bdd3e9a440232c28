package sessions

import (
	"github.com/gorilla/sessions"
)

const userIDKey = "userId"

// Session is the per-client session state. The zero session is anonymous.
type Session struct {
	base      *sessions.Session
	needsSave bool
}

// NeedsSave reports whether the session was mutated since it was loaded
// or last saved.
func (s *Session) NeedsSave() bool {
	return s.needsSave
}

// UserID returns the authenticated user id, if any.
func (s *Session) UserID() (int, bool) {
	userID, ok := s.base.Values[userIDKey].(int)
	return userID, ok
}

// SetUserID marks the session as authenticated for the given user.
func (s *Session) SetUserID(userID int) {
	s.needsSave = true
	s.base.Values[userIDKey] = userID
}

// AddFlash queues a message to be shown on the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.needsSave = true
	s.base.AddFlash(msg)
}

// ConsumeFlashes returns the queued messages and removes them from the
// session.
func (s *Session) ConsumeFlashes() []string {
	raw := s.base.Flashes()
	if len(raw) == 0 {
		return nil
	}

	s.needsSave = true

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}
