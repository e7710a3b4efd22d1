package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormErrors maps a form field name to the message shown next to it.
type FormErrors map[string]string

// Fields stored in VARCHAR(250) columns carry max=250 so both database
// dialects see the same limit.
type registerForm struct {
	Username string `form:"username" validate:"required,max=250"`
	Email    string `form:"email" validate:"required,email,max=250"`
	Password string `form:"password" validate:"required,min=8"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type commentForm struct {
	Comment string `form:"comment" validate:"required"`
}

type postForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
}

type contactForm struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone"`
	Message string `form:"message" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// decodeForm fills the string fields of dst from the posted form using
// their form tags. Values other than passwords are trimmed.
func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" || v.Field(i).Kind() != reflect.String {
			continue
		}
		val := r.PostForm.Get(name)
		if name != "password" {
			val = strings.TrimSpace(val)
		}
		v.Field(i).SetString(val)
	}
	return nil
}

// formValues echoes a form back into its template, minus any password.
func formValues(src any) map[string]string {
	out := map[string]string{}
	v := reflect.ValueOf(src)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" || name == "password" {
			continue
		}
		out[name] = v.Field(i).String()
	}
	return out
}

// check validates form and returns nil when it is acceptable.
func (s *Server) check(form any) FormErrors {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FormErrors{"_": err.Error()}
	}
	fe := FormErrors{}
	for _, e := range verrs {
		fe[e.Field()] = fieldMessage(e)
	}
	return fe
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", e.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", e.Param())
	default:
		return "Invalid value."
	}
}
