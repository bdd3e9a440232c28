package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mdewit/matchbox/internal/web/sessions"
)

// session is a middleware that loads the session for the request and
// injects it in the context. Sessions are only written back when a
// handler actually mutates them, so anonymous visitors don't get a
// cookie.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.deps.Sessions.Get(r)

		ctx := ctxWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey string

const sessionCtxKey ctxKey = "matchboxSession"

func ctxWithSession(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

func sessionFromCtx(ctx context.Context) (*sessions.Session, error) {
	sess, ok := ctx.Value(sessionCtxKey).(*sessions.Session)
	if !ok {
		return nil, fmt.Errorf("could not get session from context")
	}

	return sess, nil
}
