package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/fallincloud/travelog/internal/domain"
	"github.com/fallincloud/travelog/internal/imagestore"
	"github.com/fallincloud/travelog/internal/schedule"
	"github.com/fallincloud/travelog/internal/service"
)

type Server struct {
	travels   *service.TravelService
	auth      *service.AuthService
	images    imagestore.ImageStore
	templates embed.FS
	sessions  *sessions.CookieStore
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	logger    *slog.Logger

	// now supplies the countdown reference clock; overridable in tests.
	now func() time.Time
}

func NewServer(travels *service.TravelService, auth *service.AuthService, images imagestore.ImageStore, tmpl embed.FS, sessionSecret string, logger *slog.Logger) *Server {
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		travels:   travels,
		auth:      auth,
		images:    images,
		templates: tmpl,
		sessions:  store,
		mux:       http.NewServeMux(),
		logger:    logger,
		now:       schedule.ReferenceNow,
	}
	s.tmplFuncs = template.FuncMap{
		"fmtDate":  fmtDate,
		"fmtCost":  fmtCost,
		"rawHTML":  func(s string) template.HTML { return template.HTML(s) },
		"coverURL": coverURL,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/travels", http.StatusSeeOther)
	})

	s.mux.HandleFunc("GET /travels", s.handleListTravels)
	s.mux.HandleFunc("GET /travels/new", s.requireAdmin(s.handleNewTravel))
	s.mux.HandleFunc("POST /travels", s.requireAdmin(s.handleCreateTravel))
	s.mux.HandleFunc("GET /travels/{id}", s.handleShowTravel)
	s.mux.HandleFunc("GET /travels/{id}/edit", s.requireAdmin(s.handleEditTravel))
	s.mux.HandleFunc("POST /travels/{id}", s.requireAdmin(s.handleUpdateTravel))
	s.mux.HandleFunc("POST /travels/{id}/delete", s.requireAdmin(s.handleDeleteTravel))

	s.mux.HandleFunc("GET /itineraries/new", s.requireAdmin(s.handleNewItinerary))
	s.mux.HandleFunc("POST /itineraries", s.requireAdmin(s.handleCreateItinerary))
	s.mux.HandleFunc("GET /itineraries/{id}/edit", s.requireAdmin(s.handleEditItinerary))
	s.mux.HandleFunc("POST /itineraries/{id}", s.requireAdmin(s.handleUpdateItinerary))
	s.mux.HandleFunc("POST /itineraries/{id}/delete", s.requireAdmin(s.handleDeleteItinerary))
	s.mux.HandleFunc("POST /itineraries/upload-image", s.requireAdminAPI(s.handleUploadImage))

	s.mux.HandleFunc("GET /api/travels/{id}/countdowns", s.handleCountdowns)
	s.mux.HandleFunc("GET /uploads/{key}", s.handleServeUpload)
	s.mux.HandleFunc("GET /static/", s.handleStatic)

	s.mux.HandleFunc("GET /users", s.requireAdmin(s.handleListUsers))
	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /logout", s.handleLogout)
	s.mux.HandleFunc("GET /register", s.handleRegisterPage)
	s.mux.HandleFunc("POST /register", s.handleRegister)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderPage parses and executes a full-page template set. The request-scoped
// view context (current user, flash messages) is merged into data before
// execution.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any, files ...string) error {
	if data == nil {
		data = map[string]any{}
	}
	vc := s.viewContext(w, r)
	data["User"] = vc.User
	data["SuccessFlashes"] = vc.Success
	data["ErrorFlashes"] = vc.Error

	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, append([]string{"base.html"}, files...)...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtCost(c *float64) string {
	if c == nil {
		return ""
	}
	return strconv.FormatFloat(*c, 'f', 2, 64)
}

func coverURL(t *domain.Travel) string {
	if t == nil || t.CoverImage == "" {
		return ""
	}
	return service.UploadPrefix + t.CoverImage
}

// seeOther redirects after a mutation, POST-redirect-GET style.
func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func trimmedForm(r *http.Request, field string) string {
	return strings.TrimSpace(r.FormValue(field))
}
