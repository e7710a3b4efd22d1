package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"blog/internal/config"
	"blog/internal/mail"
	"blog/internal/metrics"
	"blog/internal/models"
	"blog/internal/session"
	"blog/web"
)

// Deps are the collaborators a Server is built from. All are required
// except MetricsHandler.
type Deps struct {
	Store          *models.Store
	Sessions       *session.Manager
	Mailer         mail.Sender
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *zap.SugaredLogger
}

type Server struct {
	cfg      *config.Config
	store    *models.Store
	sessions *session.Manager
	mailer   mail.Sender
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger

	tmpl     map[string]*template.Template
	validate *validator.Validate
	now      func() time.Time
	handler  http.Handler
}

func New(cfg *config.Config, deps Deps) (*Server, error) {
	templates, err := parseTemplates(web.FS)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		store:    deps.Store,
		sessions: deps.Sessions,
		mailer:   deps.Mailer,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		tmpl:     templates,
		validate: newValidator(),
		now:      time.Now,
	}
	s.handler = s.routes(deps.MetricsHandler)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// parseTemplates pairs layout.html with every other page in templates/.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := map[string]*template.Template{}
	layout := "templates/layout.html"
	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if page == layout {
			continue
		}
		t, err := template.New(path.Base(page)).Funcs(templateFuncs).ParseFS(fsys, layout, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		name := strings.TrimSuffix(path.Base(page), ".html")
		templates[name] = t
	}
	return templates, nil
}

// render executes page into a buffer first so a template error can still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data *templateData) {
	t, ok := s.tmpl[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("template %q not found", name))
		return
	}
	if data == nil {
		data = &templateData{}
	}
	s.fillDefaults(w, r, data)

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "layout", data); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
