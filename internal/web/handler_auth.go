package web

import (
	"errors"
	"net/http"

	"github.com/fallincloud/travelog/internal/service"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(r); user != nil {
		seeOther(w, r, "/travels")
		return
	}
	if err := s.renderPage(w, r, nil, "pages/login.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := trimmedForm(r, "username")
	password := r.FormValue("password")

	user, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			s.flashError(w, r, "invalid username or password")
		} else {
			s.logger.Error("login failed", "username", username, "error", err)
			s.flashError(w, r, "login failed")
		}
		seeOther(w, r, "/login")
		return
	}

	if err := s.signIn(w, r, user); err != nil {
		s.logger.Error("save session failed", "error", err)
		s.flashError(w, r, "login failed")
		seeOther(w, r, "/login")
		return
	}

	s.flashSuccess(w, r, "welcome back, "+user.Username)
	seeOther(w, r, "/travels")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.signOut(w, r); err != nil {
		s.logger.Error("save session failed", "error", err)
	}
	seeOther(w, r, "/travels")
}

// handleListUsers renders the account overview for admins.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		s.flashError(w, r, "failed to load users")
		seeOther(w, r, "/travels")
		return
	}

	if err := s.renderPage(w, r,
		map[string]any{"Users": users, "ActiveNav": "users"},
		"pages/users.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleRegisterPage gates registration: once an admin exists, only admins may
// create further accounts.
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	allowed, err := s.auth.CanRegister(r.Context(), s.currentUser(r))
	if err != nil {
		s.logger.Error("registration check failed", "error", err)
		s.flashError(w, r, "registration is unavailable")
		seeOther(w, r, "/travels")
		return
	}
	if !allowed {
		s.flashError(w, r, "registration requires admin access")
		seeOther(w, r, "/login")
		return
	}
	if err := s.renderPage(w, r, nil, "pages/register.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	allowed, err := s.auth.CanRegister(r.Context(), s.currentUser(r))
	if err != nil {
		s.logger.Error("registration check failed", "error", err)
		s.flashError(w, r, "registration is unavailable")
		seeOther(w, r, "/travels")
		return
	}
	if !allowed {
		s.flashError(w, r, "registration requires admin access")
		seeOther(w, r, "/login")
		return
	}

	user, err := s.auth.Register(r.Context(),
		trimmedForm(r, "username"),
		trimmedForm(r, "email"),
		r.FormValue("password"),
		r.FormValue("confirmPassword"),
	)
	if err != nil {
		if service.IsValidation(err) {
			s.flashError(w, r, err.Error())
		} else {
			s.logger.Error("register failed", "error", err)
			s.flashError(w, r, "registration failed")
		}
		seeOther(w, r, "/register")
		return
	}

	// The first registered user becomes the admin and is signed in directly.
	if s.currentUser(r) == nil {
		if err := s.signIn(w, r, user); err != nil {
			s.logger.Error("save session failed", "error", err)
		}
	}
	s.flashSuccess(w, r, "account created for "+user.Username)
	seeOther(w, r, "/travels")
}
