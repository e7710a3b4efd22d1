package session

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"
)

// Cookies signs the session and flash cookies with the application secret.
type Cookies struct {
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

// NewCookies derives the signing key from secret. secure marks cookies
// HTTPS-only.
func NewCookies(secret string, ttl time.Duration, secure bool) *Cookies {
	hashKey := sha256.Sum256([]byte(secret))
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &Cookies{codec: codec, ttl: ttl, secure: secure}
}

func (c *Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *Cookies) SetSession(w http.ResponseWriter, token string) error {
	encoded, err := c.codec.Encode(SessionCookie, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(SessionCookie, encoded, int(c.ttl.Seconds())))
	return nil
}

// SessionToken returns the token from a correctly signed session cookie.
func (c *Cookies) SessionToken(r *http.Request) (string, bool) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	var token string
	if err := c.codec.Decode(SessionCookie, ck.Value, &token); err != nil {
		return "", false
	}
	return token, token != ""
}

func (c *Cookies) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(SessionCookie, "", -1))
}

// AddFlash queues msg for the next rendered page, after any already queued.
func (c *Cookies) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	msgs := append(c.flashes(r), msg)
	encoded, err := c.codec.Encode(FlashCookie, msgs)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(FlashCookie, encoded, 0))
	// Later reads in the same request see the message too.
	r.AddCookie(&http.Cookie{Name: FlashCookie, Value: encoded})
	return nil
}

// PopFlashes returns queued messages and clears them.
func (c *Cookies) PopFlashes(w http.ResponseWriter, r *http.Request) []string {
	msgs := c.flashes(r)
	if len(msgs) > 0 {
		http.SetCookie(w, c.cookie(FlashCookie, "", -1))
	}
	return msgs
}

func (c *Cookies) flashes(r *http.Request) []string {
	var last []string
	// r.AddCookie appends, so the newest value wins.
	for _, ck := range r.Cookies() {
		if ck.Name != FlashCookie {
			continue
		}
		var msgs []string
		if err := c.codec.Decode(FlashCookie, ck.Value, &msgs); err == nil {
			last = msgs
		}
	}
	return last
}
