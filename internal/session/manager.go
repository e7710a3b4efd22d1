package session

import (
	"context"
	"errors"
	"net/http"
)

// Manager ties a Store to the cookies that carry its tokens.
type Manager struct {
	Store   Store
	Cookies *Cookies
}

func NewManager(store Store, cookies *Cookies) *Manager {
	return &Manager{Store: store, Cookies: cookies}
}

// Login starts a session for userID and sets the session cookie. A session
// the request already carries is revoked first so its token cannot be reused.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) error {
	if old, ok := m.Cookies.SessionToken(r); ok {
		if err := m.Store.Delete(ctx, old); err != nil {
			return err
		}
	}
	token, err := m.Store.Create(ctx, userID)
	if err != nil {
		return err
	}
	return m.Cookies.SetSession(w, token)
}

// Logout drops the server-side session, if any, and clears the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.Cookies.ClearSession(w)
	token, ok := m.Cookies.SessionToken(r)
	if !ok {
		return nil
	}
	return m.Store.Delete(ctx, token)
}

// UserID resolves the request's session. ok is false for anonymous
// requests, including those with a stale or forged cookie.
func (m *Manager) UserID(r *http.Request) (id int64, ok bool, err error) {
	token, found := m.Cookies.SessionToken(r)
	if !found {
		return 0, false, nil
	}
	id, err = m.Store.Lookup(r.Context(), token)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
