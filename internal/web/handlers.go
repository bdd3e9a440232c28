package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/email"
	"github.com/mdewit/matchbox/internal/errorz"
)

type registerForm struct {
	Name     string `schema:"name"`
	Email    string `schema:"email"`
	Password string `schema:"password"`
	Bio      string `schema:"bio"`
}

type loginForm struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
}

type profileForm struct {
	Name string `schema:"name"`
	Bio  string `schema:"bio"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if _, ok := sess.UserID(); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r, http.StatusOK, "register", viewData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm[registerForm](s, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	// Validate presence before any hashing or store call.
	if form.Name == "" || form.Email == "" || form.Password == "" || form.Bio == "" {
		s.writeView(w, r, http.StatusBadRequest, "register", viewData{
			Error: "Please fill out all fields.",
			Form:  r.PostForm,
		})
		return
	}

	addr, err := email.ParseAddress(form.Email)
	if err != nil {
		s.writeView(w, r, http.StatusBadRequest, "register", viewData{
			Error: "Enter a valid email address.",
			Form:  r.PostForm,
		})
		return
	}

	pwd, err := auth.ParsePassword(form.Password)
	if err != nil {
		s.writeView(w, r, http.StatusBadRequest, "register", viewData{
			Error: "That password is too long.",
			Form:  r.PostForm,
		})
		return
	}

	user, err := s.deps.Auth.RegisterUser(r.Context(), auth.Registration{
		Name:     form.Name,
		Email:    addr,
		Password: pwd,
		Bio:      form.Bio,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			s.writeView(w, r, http.StatusBadRequest, "register", viewData{
				Error: "That email is already registered.",
				Form:  r.PostForm,
			})
			return
		}

		s.deps.Logger.Error("failed to register user",
			"requestID", requestIDFromCtx(r.Context()),
			"error", err,
		)
		s.writeView(w, r, http.StatusInternalServerError, "register", viewData{
			Error: "Unable to create account right now.",
			Form:  r.PostForm,
		})
		return
	}

	if err := s.startSession(w, r, user.ID); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r, http.StatusOK, "login", viewData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm[loginForm](s, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if form.Email == "" || form.Password == "" {
		s.writeView(w, r, http.StatusBadRequest, "login", viewData{
			Error: "Email and password are required.",
			Form:  r.PostForm,
		})
		return
	}

	// A malformed email address can't belong to an account. It gets the
	// same generic message as a wrong password so the response doesn't
	// reveal which part of the credentials was off.
	var user auth.User
	creds, err := parseCredentials(form.Email, form.Password)
	if err == nil {
		user, err = s.deps.Auth.Authenticate(r.Context(), creds)
	} else {
		err = auth.ErrInvalidCredentials
	}

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.writeView(w, r, http.StatusUnauthorized, "login", viewData{
				Error: "Invalid email or password.",
				Form:  r.PostForm,
			})
			return
		}

		s.deps.Logger.Error("failed to authenticate user",
			"requestID", requestIDFromCtx(r.Context()),
			"error", err,
		)
		s.writeView(w, r, http.StatusInternalServerError, "login", viewData{
			Error: "Unable to log in right now.",
			Form:  r.PostForm,
		})
		return
	}

	if err := s.startSession(w, r, user.ID); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.deps.Sessions.Destroy(r, w, sess); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

type dashboardData struct {
	User    auth.User
	Matches []auth.Match
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := s.sessionUserID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	user, matches, err := s.deps.Auth.Dashboard(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeView(w, r, http.StatusOK, "dashboard", viewData{
		Data: dashboardData{
			User:    user,
			Matches: matches,
		},
	})
}

func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	userID, err := s.sessionUserID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	user, err := s.deps.Auth.Profile(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeView(w, r, http.StatusOK, "profile", viewData{
		Form: url.Values{
			"name": {user.Name},
			"bio":  {user.Bio},
		},
		Data: user,
	})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := s.sessionUserID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	form, err := decodeForm[profileForm](s, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if form.Name == "" || form.Bio == "" {
		// The re-rendered form still needs the email for display.
		user, err := s.deps.Auth.Profile(r.Context(), userID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		s.writeView(w, r, http.StatusBadRequest, "profile", viewData{
			Error: "Name and bio are required.",
			Form:  r.PostForm,
			Data:  user,
		})
		return
	}

	err = s.deps.Auth.UpdateProfile(r.Context(), userID, auth.ProfileUpdate{
		Name: form.Name,
		Bio:  form.Bio,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sess.AddFlash("Your profile has been updated.")
	if err := s.deps.Sessions.Save(r, w, sess); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// startSession binds the session to the given user and writes the cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, userID int) error {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		return err
	}

	sess.SetUserID(userID)
	return s.deps.Sessions.Save(r, w, sess)
}

// sessionUserID returns the authenticated user id. Handlers behind the
// loggedIn guard can rely on it being present.
func (s *Server) sessionUserID(r *http.Request) (int, error) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		return 0, err
	}

	userID, ok := sess.UserID()
	if !ok {
		return 0, errors.New("no user id in session")
	}

	return userID, nil
}

func parseCredentials(rawEmail, rawPassword string) (auth.Credentials, error) {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return auth.Credentials{}, err
	}

	pwd, err := auth.ParsePassword(rawPassword)
	if err != nil {
		return auth.Credentials{}, err
	}

	return auth.Credentials{
		Email:    addr,
		Password: pwd,
	}, nil
}

// decodeForm maps the submitted form to a value of type IN.
func decodeForm[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN
	if err := r.ParseForm(); err != nil {
		return in, err
	}

	err := s.decoder.Decode(&in, r.PostForm)
	return in, decodeError(err)
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}
