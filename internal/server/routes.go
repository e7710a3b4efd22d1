package server

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blog/web"
)

func (s *Server) routes(metricsHandler http.Handler) http.Handler {
	m := NewMiddleware(s.logger, s.metrics, s.cfg.IsProd())
	r := chi.NewRouter()

	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/healthz", s.handleHealthz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	static, _ := fs.Sub(web.FS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// JSON API; cookies play no part here.
	r.Group(func(r chi.Router) {
		r.Use(m.CORS(s.cfg.API.CORSAllowedOrigins))
		r.Use(s.requireAPISecret)
		r.Get("/get-all-posts", s.handleAllPosts)
		r.Get("/get-all-users", s.handleAllUsers)
	})

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(s.loadUser)

		r.Get("/", s.handleIndex)
		r.Get("/about", s.handleAbout)
		r.Get("/contact", s.handleContactForm)
		r.Post("/contact", s.handleContact)

		limit := m.RateLimit(s.cfg.Security.RateLimitRPM)
		r.Get("/register", s.handleRegisterForm)
		r.With(limit).Post("/register", s.handleRegister)
		r.Get("/login", s.handleLoginForm)
		r.With(limit).Post("/login", s.handleLogin)
		r.Get("/logout", s.requireAuth(s.handleLogout))

		r.Get("/post/{id}", s.handleShowPost)
		r.Post("/post/{id}", s.handleComment)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/new-post", s.handleNewPostForm)
			r.Post("/new-post", s.handleNewPost)
			r.Get("/edit-post/{id}", s.handleEditPostForm)
			r.Post("/edit-post/{id}", s.handleEditPost)
			r.Get("/edit-post", s.handleEditPostForm)
			r.Post("/edit-post", s.handleEditPost)
			r.Get("/delete/{id}", s.handleDeletePost)
		})

		r.NotFound(s.notFound)
	})

	return r
}
