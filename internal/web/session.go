package web

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/fallincloud/travelog/internal/domain"
)

const sessionName = "travelog_session"

const (
	flashSuccess = "success_msg"
	flashError   = "error_msg"
)

// viewContext is the request-scoped state handed to templates: the session
// user and any flash messages queued by the previous request. It is built
// fresh per request; nothing here is shared between requests.
type viewContext struct {
	User    *domain.User
	Success []string
	Error   []string
}

func (s *Server) session(r *http.Request) *sessions.Session {
	// Get never fails fatally: a bad or missing cookie yields a fresh session.
	sess, _ := s.sessions.Get(r, sessionName)
	return sess
}

// currentUser resolves the session's user id against the user store. A stale
// or absent id yields nil.
func (s *Server) currentUser(r *http.Request) *domain.User {
	sess := s.session(r)
	id, ok := sess.Values["user_id"].(int64)
	if !ok {
		return nil
	}
	user, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to resolve session user", "user_id", id, "error", err)
		return nil
	}
	return user
}

// viewContext drains the session's flash messages and pairs them with the
// current user. Draining mutates the session, so the cookie is saved here.
func (s *Server) viewContext(w http.ResponseWriter, r *http.Request) viewContext {
	sess := s.session(r)
	vc := viewContext{User: s.currentUser(r)}
	for _, f := range sess.Flashes(flashSuccess) {
		if msg, ok := f.(string); ok {
			vc.Success = append(vc.Success, msg)
		}
	}
	for _, f := range sess.Flashes(flashError) {
		if msg, ok := f.(string); ok {
			vc.Error = append(vc.Error, msg)
		}
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to save session", "error", err)
	}
	return vc
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess := s.session(r)
	sess.AddFlash(msg, kind)
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to save session", "error", err)
	}
}

func (s *Server) flashSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	s.flash(w, r, flashSuccess, msg)
}

func (s *Server) flashError(w http.ResponseWriter, r *http.Request, msg string) {
	s.flash(w, r, flashError, msg)
}

// signIn records the user in the session.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	sess := s.session(r)
	sess.Values["user_id"] = user.ID
	return sess.Save(r, w)
}

// signOut drops the session.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	delete(sess.Values, "user_id")
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// requireAdmin gates a browser-facing mutation: non-admins are flashed a
// message and redirected to the login page before any store call happens.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := s.currentUser(r); !user.IsAdmin() {
			s.flashError(w, r, "admin access required")
			seeOther(w, r, "/login")
			return
		}
		next(w, r)
	}
}

// requireAdminAPI gates a programmatic mutation: non-admins get a structured
// JSON rejection instead of a redirect.
func (s *Server) requireAdminAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := s.currentUser(r); !user.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"error":   "admin access required",
			})
			return
		}
		next(w, r)
	}
}
