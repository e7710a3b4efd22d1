// Package session keeps server-side login sessions and the signed cookies
// that point at them.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found or expired")

// Store maps opaque tokens to user ids.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	// Cleanup removes expired sessions and reports how many were dropped.
	Cleanup(ctx context.Context) (int64, error)
	Close() error
}

func newToken() string {
	return uuid.NewString()
}

type clock func() time.Time
