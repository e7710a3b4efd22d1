package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"blog/internal/db"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateTitle     = errors.New("a post with this title already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store runs the blog queries against either supported driver.
type Store struct {
	db     *sql.DB
	driver string
}

func NewStore(conn *sql.DB, driver string) *Store {
	return &Store{db: conn, driver: driver}
}

func (s *Store) q(query string) string {
	return db.Rebind(s.driver, query)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Users

// CreateUser inserts a user. The UNIQUE constraint on email is the only
// duplicate check; a violation is reported as ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	u := User{Username: username, Email: email, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO user_table (username, email, password) VALUES (?, ?, ?) RETURNING id`),
		username, email, passwordHash).Scan(&u.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT id, username, email, password FROM user_table WHERE id = ?`), id)
	return scanUser(row)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT id, username, email, password FROM user_table WHERE email = ?`), email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, email, password FROM user_table ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Posts

const postColumns = `p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, u.username`

const postFrom = ` FROM blog_posts p JOIN user_table u ON u.id = p.author_id`

func (s *Store) CreatePost(ctx context.Context, p Post) (*Post, error) {
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		p.AuthorID, p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL).Scan(&p.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListPosts returns every post in primary-key order.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+postFrom+` ORDER BY p.id`)
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	return s.queryPosts(ctx, s.q(`SELECT `+postColumns+postFrom+` WHERE p.author_id = ? ORDER BY p.id`), authorID)
}

func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+postColumns+postFrom+` WHERE p.id = ?`), id)
	var p Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL, &p.AuthorName); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// UpdatePost overwrites every mutable column, including the author.
func (s *Store) UpdatePost(ctx context.Context, p Post) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE blog_posts SET author_id = ?, title = ?, subtitle = ?, body = ?, img_url = ? WHERE id = ?`),
		p.AuthorID, p.Title, p.Subtitle, p.Body, p.ImgURL, p.ID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}

// DeletePost removes a post together with its comments.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM blog_posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL, &p.AuthorName); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Comments

const commentColumns = `c.id, c.post_id, c.author_id, c.text, u.username, u.email`

const commentFrom = ` FROM comments c JOIN user_table u ON u.id = c.author_id`

func (s *Store) CreateComment(ctx context.Context, postID, authorID int64, text string) (*Comment, error) {
	c := Comment{PostID: postID, AuthorID: authorID, Text: text}
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO comments (post_id, author_id, text) VALUES (?, ?, ?) RETURNING id`),
		postID, authorID, text).Scan(&c.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	return s.queryComments(ctx, s.q(`SELECT `+commentColumns+commentFrom+` WHERE c.post_id = ? ORDER BY c.id`), postID)
}

func (s *Store) CommentsByAuthor(ctx context.Context, authorID int64) ([]Comment, error) {
	return s.queryComments(ctx, s.q(`SELECT `+commentColumns+commentFrom+` WHERE c.author_id = ? ORDER BY c.id`), authorID)
}

func (s *Store) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.AuthorName, &c.AuthorEmail); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// helpers

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if constraint, ok := uniqueViolation(err); ok {
		switch {
		case strings.Contains(constraint, "email"):
			return fmt.Errorf("%w: %v", ErrDuplicateEmail, err)
		case strings.Contains(constraint, "title"):
			return fmt.Errorf("%w: %v", ErrDuplicateTitle, err)
		}
	}
	return err
}

func uniqueViolation(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		// "UNIQUE constraint failed: user_table.email"
		return sqliteErr.Error(), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// "user_table_email_key"
		return pgErr.ConstraintName, true
	}
	return "", false
}
