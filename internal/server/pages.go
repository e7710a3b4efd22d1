package server

import (
	"net/http"

	"blog/internal/mail"
)

const (
	flashMailSent   = "Successfully sent your message"
	flashMailFailed = "Your message could not be sent right now. Please try again later."
)

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", nil)
}

func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "contact", nil)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var form contactForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	if errs := s.check(form); errs != nil {
		s.render(w, r, http.StatusOK, "contact", &templateData{FormData: formValues(form), FormErrors: errs})
		return
	}

	res := s.mailer.Send(r.Context(), mail.Message{
		Name:  form.Name,
		Email: form.Email,
		Phone: form.Phone,
		Body:  form.Message,
	})
	s.metrics.RecordMailSend(r.Context(), res.Delivered)
	if res.Err != nil {
		s.logger.Errorw("contact relay failed", "error", res.Err)
		s.flash(w, r, flashMailFailed)
	} else {
		s.flash(w, r, flashMailSent)
	}
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}
