package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blog/internal/db"
)

// SQLStore keeps sessions in the sessions table next to the blog data.
type SQLStore struct {
	db     *sql.DB
	driver string
	ttl    time.Duration
	now    clock
}

func NewSQLStore(conn *sql.DB, driver string, ttl time.Duration) *SQLStore {
	return &SQLStore{db: conn, driver: driver, ttl: ttl, now: time.Now}
}

func (s *SQLStore) Create(ctx context.Context, userID int64) (string, error) {
	token := newToken()
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		db.Rebind(s.driver, `INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`),
		token, userID, now.Add(s.ttl).Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (s *SQLStore) Lookup(ctx context.Context, token string) (int64, error) {
	var userID, expires int64
	err := s.db.QueryRowContext(ctx,
		db.Rebind(s.driver, `SELECT user_id, expires_at FROM sessions WHERE token = ?`),
		token).Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if s.now().Unix() >= expires {
		return 0, ErrNotFound
	}
	return userID, nil
}

func (s *SQLStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, db.Rebind(s.driver, `DELETE FROM sessions WHERE token = ?`), token)
	return err
}

func (s *SQLStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		db.Rebind(s.driver, `DELETE FROM sessions WHERE expires_at <= ?`), s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close is a no-op; the connection pool belongs to the caller.
func (s *SQLStore) Close() error { return nil }
