// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
)

// Open returns a migrated, file-backed SQLite database that is closed when
// the test ends. A file (not :memory:) is used so concurrent transactions
// exercise real locking.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:  config.DriverSQLite,
		Path:    filepath.Join(t.TempDir(), "library.db"),
		Migrate: true,
	}
	conn, err := db.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// SeedUser inserts a user row directly and returns its id.
func SeedUser(t testing.TB, conn *sqlx.DB, username string, isAdmin bool) int64 {
	t.Helper()
	res, err := conn.Exec(
		`INSERT INTO users (surname, firstname, username, password_hash, display_name, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"Doe", "Test", username, "x", username, isAdmin, time.Now().UTC(),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedBook inserts a book with the given copy counts and returns its id.
func SeedBook(t testing.TB, conn *sqlx.DB, title, isbn string, total, available int) int64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := conn.Exec(
		`INSERT INTO books (author, title, publication, copyright_year, physical_description, isbn, subject,
		 call_number, accession_number, location, total_copies, available_copies, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"Ursula K. Le Guin", title, "Ace Books", 1969, "286 p.", isbn, "Fiction",
		"PS3562.E42", "ACC-"+isbn, "Main Stacks", total, available, now, now,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// AvailableCopies reads the live counter for a book.
func AvailableCopies(t testing.TB, conn *sqlx.DB, bookID int64) int {
	t.Helper()
	var n int
	require.NoError(t, conn.Get(&n, `SELECT available_copies FROM books WHERE id = ?`, bookID))
	return n
}

// SeedLoan inserts a borrowing row without touching book availability.
// borrowed is the loan start; the due date is 14 days later.
func SeedLoan(t testing.TB, conn *sqlx.DB, userID, bookID int64, status string, borrowed time.Time) int64 {
	t.Helper()
	borrowed = borrowed.UTC().Truncate(time.Microsecond)
	var returned any
	if status == "returned" {
		returned = borrowed.Add(24 * time.Hour)
	}
	res, err := conn.Exec(
		`INSERT INTO borrowings (reference, user_id, book_id, borrowed_date, due_date, returned_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprintf("SEED%022d", seq.Add(1)), userID, bookID, borrowed, borrowed.AddDate(0, 0, 14), returned, status,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

var seq atomic.Int64
