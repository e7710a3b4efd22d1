package server

import (
	"net/http"
	"runtime/debug"
)

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Errorw("internal error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"stack", string(debug.Stack()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// clientError renders the error page with status.
func (s *Server) clientError(w http.ResponseWriter, r *http.Request, status int) {
	s.render(w, r, status, "error", &templateData{
		Status:  status,
		Message: http.StatusText(status),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.clientError(w, r, http.StatusNotFound)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.clientError(w, r, http.StatusForbidden)
}
