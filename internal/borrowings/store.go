package borrowings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/db"
)

const activeStatuses = `('borrowed', 'overdue')`

type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store { return &Store{db: conn} }

// lockUser locks the caller's row so one user's borrows run one at a time.
// It reports false when the user no longer exists.
func (s *Store) lockUser(ctx context.Context, q db.DBTX, userID int64) (bool, error) {
	var id int64
	err := q.GetContext(ctx, &id, `SELECT id FROM users WHERE id = ?`+db.ForUpdate(q), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// lockBook returns (nil, nil) when the book does not exist.
func (s *Store) lockBook(ctx context.Context, q db.DBTX, bookID int64) (*bookState, error) {
	var b bookState
	err := q.GetContext(ctx, &b,
		`SELECT id, title, author, total_copies, available_copies FROM books WHERE id = ?`+db.ForUpdate(q), bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) countActiveForUser(ctx context.Context, q db.DBTX, userID int64) (int, error) {
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM borrowings WHERE user_id = ? AND status IN `+activeStatuses, userID)
	return n, err
}

func (s *Store) hasActiveLoan(ctx context.Context, q db.DBTX, userID, bookID int64) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM borrowings WHERE user_id = ? AND book_id = ? AND status IN `+activeStatuses, userID, bookID)
	return n > 0, err
}

// snapshot reads the borrow rule inputs for (userID, bookID) and returns the
// locked book row alongside.
func (s *Store) snapshot(ctx context.Context, q db.DBTX, userID, bookID int64) (borrowSnapshot, *bookState, error) {
	var snap borrowSnapshot
	book, err := s.lockBook(ctx, q, bookID)
	if err != nil || book == nil {
		return snap, nil, err
	}
	snap.BookFound = true
	snap.AvailableCopies = book.AvailableCopies

	if snap.AlreadyBorrowed, err = s.hasActiveLoan(ctx, q, userID, bookID); err != nil {
		return snap, nil, err
	}
	if snap.ActiveLoans, err = s.countActiveForUser(ctx, q, userID); err != nil {
		return snap, nil, err
	}
	return snap, book, nil
}

// takeCopy decrements availability only while a copy is left. false means
// the shelf was empty.
func (s *Store) takeCopy(ctx context.Context, q db.DBTX, bookID int64) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies - 1 WHERE id = ? AND available_copies > 0`, bookID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

// putBack increments availability, capped at total_copies.
func (s *Store) putBack(ctx context.Context, q db.DBTX, bookID int64) error {
	_, err := q.ExecContext(ctx, `
	UPDATE books
	SET available_copies = CASE WHEN available_copies < total_copies THEN available_copies + 1 ELSE available_copies END
	WHERE id = ?`, bookID)
	return err
}

func (s *Store) insertBorrowing(ctx context.Context, q db.DBTX, b *Borrowing) error {
	const query = `
	INSERT INTO borrowings
	(reference, user_id, book_id, borrowed_date, due_date, status, notes)
	VALUES
	(?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		b.Reference, b.UserID, b.BookID, b.BorrowedDate, b.DueDate, b.Status, b.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

const loanSelect = `
	SELECT
	b.id, b.reference, b.user_id, b.book_id, b.borrowed_date, b.due_date, b.returned_date, b.status, b.notes,
	bk.title, bk.author, bk.isbn, bk.call_number,
	u.username
	FROM borrowings b
	JOIN books bk ON bk.id = b.book_id
	LEFT JOIN users u ON u.id = b.user_id`

// activeLoanOf returns the caller's active loan with the given id, locked,
// or (nil, nil) when there is none. Callers hold the user lock first, the
// same order Borrow takes.
func (s *Store) activeLoanOf(ctx context.Context, q db.DBTX, loanID, userID int64) (*loanRow, error) {
	var r loanRow
	err := q.GetContext(ctx, &r,
		loanSelect+` WHERE b.id = ? AND b.user_id = ? AND b.status IN `+activeStatuses+db.ForUpdate(q),
		loanID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) markReturned(ctx context.Context, q db.DBTX, loanID int64, at time.Time) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE borrowings SET status = ?, returned_date = ? WHERE id = ? AND status IN `+activeStatuses,
		StatusReturned, at, loanID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

// ListLoans lists loans newest first; userID 0 lists everyone's.
func (s *Store) ListLoans(ctx context.Context, userID int64) ([]loanRow, error) {
	sb := strings.Builder{}
	sb.WriteString(loanSelect)
	args := []any{}
	if userID > 0 {
		sb.WriteString(` WHERE b.user_id = ?`)
		args = append(args, userID)
	}
	sb.WriteString(` ORDER BY b.borrowed_date DESC, b.id DESC`)

	out := []loanRow{}
	if err := s.db.SelectContext(ctx, &out, sb.String(), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkOverdue moves the given loans from borrowed to overdue. Loans that
// were returned in the meantime are left alone.
func (s *Store) MarkOverdue(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(
		`UPDATE borrowings SET status = ? WHERE status = ? AND id IN (?)`,
		StatusOverdue, StatusBorrowed, ids)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
