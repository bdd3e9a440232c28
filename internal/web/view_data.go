package web

import (
	"net/http"
	"net/url"

	"github.com/mdewit/matchbox/internal"
)

// viewData is the envelope passed to every view.
type viewData struct {
	Version    string
	IsLoggedIn bool
	Flashes    []string
	// Error is a single user-facing message shown above a form.
	Error string
	// Form holds the submitted values so a failed form can be re-rendered
	// with the input preserved.
	Form url.Values
	Data any
}

// writeView renders the named view with the given status code.
//
// The session must not be mutated afterwards: consumed flashes and other
// pending changes are written to the response here, before the body.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, name string, vd viewData) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	_, loggedIn := sess.UserID()

	vd.Version = internal.BuildRevision
	vd.IsLoggedIn = loggedIn
	vd.Flashes = sess.ConsumeFlashes()

	if vd.Form == nil {
		vd.Form = url.Values{}
	}
	// Submitted passwords are never echoed back.
	vd.Form.Del("password")

	if sess.NeedsSave() {
		if err := s.deps.Sessions.Save(r, w, sess); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := s.deps.Views.Render(w, name, vd); err != nil {
		// The status line is already out the door, all we can do is log.
		s.deps.Logger.Error("failed to render view",
			"view", name,
			"requestID", requestIDFromCtx(r.Context()),
			"error", err,
		)
	}
}
