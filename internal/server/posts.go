package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blog/internal/models"
	"blog/internal/sanitize"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", &templateData{Posts: posts})
}

// postID reads the post id from the {id} path segment or, for the legacy
// edit URL, the post_id query parameter.
func postID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.URL.Query().Get("post_id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// loadPost writes a 404 or 500 and returns nil when the post can't be loaded.
func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, ok := postID(r)
	if !ok {
		s.notFound(w, r)
		return nil
	}
	post, err := s.store.GetPost(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.notFound(w, r)
		return nil
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil
	}
	return post
}

func (s *Server) renderPost(w http.ResponseWriter, r *http.Request, post *models.Post, data *templateData) {
	comments, err := s.store.CommentsByPost(r.Context(), post.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Post = post
	data.Comments = comments
	s.render(w, r, http.StatusOK, "post", data)
}

func (s *Server) handleShowPost(w http.ResponseWriter, r *http.Request) {
	post := s.loadPost(w, r)
	if post == nil {
		return
	}
	s.renderPost(w, r, post, &templateData{})
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	post := s.loadPost(w, r)
	if post == nil {
		return
	}
	var form commentForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	if errs := s.check(form); errs != nil {
		s.renderPost(w, r, post, &templateData{FormData: formValues(form), FormErrors: errs})
		return
	}

	user := currentUser(r)
	if user == nil {
		s.flash(w, r, flashLoginToReply)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	text := sanitize.Comment(form.Comment)
	if text == "" {
		s.renderPost(w, r, post, &templateData{
			FormData:   formValues(form),
			FormErrors: FormErrors{"comment": "Comment has no allowed content."},
		})
		return
	}
	if _, err := s.store.CreateComment(r.Context(), post.ID, user.ID, text); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordComment(r.Context())
	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

func (s *Server) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "make-post", &templateData{})
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request) {
	var form postForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	data := &templateData{FormData: formValues(form)}
	if errs := s.check(form); errs != nil {
		data.FormErrors = errs
		s.render(w, r, http.StatusOK, "make-post", data)
		return
	}

	post, err := s.store.CreatePost(r.Context(), models.Post{
		AuthorID: currentUser(r).ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     s.now().Format(models.PostDateLayout),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if errors.Is(err, models.ErrDuplicateTitle) {
		data.FormErrors = FormErrors{"title": "A post with this title already exists."}
		s.render(w, r, http.StatusOK, "make-post", data)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordPostChange(r.Context(), "create")
	s.logger.Infow("post created", "post_id", post.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	post := s.loadPost(w, r)
	if post == nil {
		return
	}
	s.render(w, r, http.StatusOK, "make-post", &templateData{
		IsEdit: true,
		PostID: post.ID,
		FormData: formValues(postForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		}),
	})
}

// handleEditPost overwrites the post's content and credits it to the editor.
// The original date is kept.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	post := s.loadPost(w, r)
	if post == nil {
		return
	}
	var form postForm
	if err := decodeForm(r, &form); err != nil {
		s.clientError(w, r, http.StatusBadRequest)
		return
	}
	data := &templateData{IsEdit: true, PostID: post.ID, FormData: formValues(form)}
	if errs := s.check(form); errs != nil {
		data.FormErrors = errs
		s.render(w, r, http.StatusOK, "make-post", data)
		return
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.ImgURL = form.ImgURL
	post.Body = form.Body
	post.AuthorID = currentUser(r).ID

	err := s.store.UpdatePost(r.Context(), *post)
	switch {
	case errors.Is(err, models.ErrDuplicateTitle):
		data.FormErrors = FormErrors{"title": "A post with this title already exists."}
		s.render(w, r, http.StatusOK, "make-post", data)
		return
	case errors.Is(err, models.ErrNotFound):
		s.notFound(w, r)
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordPostChange(r.Context(), "edit")
	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	err := s.store.DeletePost(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.RecordPostChange(r.Context(), "delete")
	s.logger.Infow("post deleted", "post_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
