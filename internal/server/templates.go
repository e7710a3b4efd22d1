package server

import (
	"crypto/md5"
	"encoding/hex"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"blog/internal/models"
)

type templateData struct {
	CurrentUser *models.User
	IsAdmin     bool
	Flashes     []string
	Year        int

	FormData   map[string]string
	FormErrors FormErrors

	Posts    []models.Post
	Post     *models.Post
	Comments []models.Comment
	IsEdit   bool
	PostID   int64

	Status  int
	Message string
}

var templateFuncs = template.FuncMap{
	"gravatar": gravatar,
	// Post bodies are admin-written and comments are sanitized on the way in.
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// gravatar returns the avatar URL for email: 100px, rated g, retro fallback.
func gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", "100")
	q.Set("d", "retro")
	q.Set("r", "g")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

func (s *Server) fillDefaults(w http.ResponseWriter, r *http.Request, data *templateData) {
	if data.CurrentUser == nil {
		data.CurrentUser = currentUser(r)
	}
	data.IsAdmin = data.CurrentUser != nil && data.CurrentUser.ID == s.cfg.AdminID
	data.Flashes = s.sessions.Cookies.PopFlashes(w, r)
	data.Year = s.now().Year()
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := s.sessions.Cookies.AddFlash(w, r, msg); err != nil {
		s.logger.Warnw("failed to set flash", "error", err)
	}
}
