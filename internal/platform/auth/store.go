package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type User struct {
	ID            int64          `db:"id"`
	Surname       string         `db:"surname"`
	Firstname     string         `db:"firstname"`
	MiddleInitial sql.NullString `db:"middle_initial"`
	Username      string         `db:"username"`
	PasswordHash  string         `db:"password_hash"`
	DisplayName   string         `db:"display_name"`
	IsAdmin       bool           `db:"is_admin"`
	CreatedAt     time.Time      `db:"created_at"`
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type Store struct{ db *sqlx.DB }

func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

const userColumns = `id, surname, firstname, middle_initial, username, password_hash, display_name, is_admin, created_at`

// GetByUsername returns (nil, nil) when no such user exists.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (surname, firstname, middle_initial, username, password_hash, display_name, is_admin, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		u.Surname, u.Firstname, u.MiddleInitial, u.Username, u.PasswordHash, u.DisplayName, u.IsAdmin, u.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}
