package server

import (
	"errors"
	"net/http"

	"blog/internal/models"
)

const (
	flashRegistered   = "Registration Successful"
	flashUserExists   = "User already exists under that email! log in instead"
	flashUnknownUser  = "User does not exist, Register."
	flashBadPassword  = "Password is Incorrect, Try again."
	flashLoggedIn     = "Login Successful"
	flashLoggedOut    = "You have been logged out."
	flashLoginToReply = "You have to be logged in to comment on that post."
)

// GuardResult is the outcome of checking a request against the admin gate.
type GuardResult int

const (
	Authorized GuardResult = iota
	Unauthorized
	Forbidden
)

func (g GuardResult) String() string {
	switch g {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "forbidden"
	}
}

// Guard reports whether the request belongs to the admin.
func (s *Server) Guard(r *http.Request) GuardResult {
	user := currentUser(r)
	switch {
	case user == nil:
		return Unauthorized
	case user.ID != s.cfg.AdminID:
		return Forbidden
	default:
		return Authorized
	}
}

// requireAdmin answers 403 for anyone but the admin, signed in or not.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if res := s.Guard(r); res != Authorized {
			s.logger.Infow("admin route refused", "path", r.URL.Path, "guard", res.String())
			s.forbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	if errs := s.check(form); errs != nil {
		s.metrics.RecordRegistration(r.Context(), "invalid")
		s.render(w, r, http.StatusOK, "register", &templateData{FormData: formValues(form), FormErrors: errs})
		return
	}

	hash, err := models.HashPassword(form.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), form.Username, form.Email, hash)
	if errors.Is(err, models.ErrDuplicateEmail) {
		s.metrics.RecordRegistration(r.Context(), "duplicate")
		s.flash(w, r, flashUserExists)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if err := s.sessions.Login(r.Context(), w, r, user.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordRegistration(r.Context(), "success")
	s.logger.Infow("user registered", "user_id", user.ID)
	s.flash(w, r, flashRegistered)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	data := &templateData{FormData: formValues(form)}
	if errs := s.check(form); errs != nil {
		data.FormErrors = errs
		s.render(w, r, http.StatusOK, "login", data)
		return
	}

	user, err := s.store.UserByEmail(r.Context(), form.Email)
	if errors.Is(err, models.ErrNotFound) {
		s.metrics.RecordLogin(r.Context(), "unknown_user")
		s.flash(w, r, flashUnknownUser)
		s.render(w, r, http.StatusOK, "login", data)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	err = models.CheckPassword(user.PasswordHash, form.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		s.metrics.RecordLogin(r.Context(), "bad_password")
		s.flash(w, r, flashBadPassword)
		s.render(w, r, http.StatusOK, "login", data)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if err := s.sessions.Login(r.Context(), w, r, user.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordLogin(r.Context(), "success")
	s.flash(w, r, flashLoggedIn)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), w, r); err != nil {
		s.logger.Warnw("failed to drop session", "error", err)
	}
	s.flash(w, r, flashLoggedOut)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
