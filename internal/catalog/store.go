package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/db"
)

const bookColumns = `id, author, title, publication, copyright_year, physical_description, series, isbn, subject,
	call_number, accession_number, location, total_copies, available_copies, created_at, updated_at`

// loans in either of these states hold a copy
const activeLoanFilter = `status IN ('borrowed', 'overdue')`

type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store { return &Store{db: conn} }

// getBook returns (nil, nil) when the row does not exist. With lock set the
// row is held until the surrounding transaction ends.
func (s *Store) getBook(ctx context.Context, q db.DBTX, id int64, lock bool) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ?`
	if lock {
		query += db.ForUpdate(q)
	}
	var b Book
	if err := q.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// isbnTaken reports whether another book (id != excludeID) already uses isbn.
func (s *Store) isbnTaken(ctx context.Context, q db.DBTX, isbn string, excludeID int64) (bool, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM books WHERE isbn = ? AND id <> ?`, isbn, excludeID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) countActiveLoans(ctx context.Context, q db.DBTX, bookID int64) (int, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM borrowings WHERE book_id = ? AND `+activeLoanFilter, bookID); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) insertBook(ctx context.Context, q db.DBTX, b *Book) error {
	const query = `
	INSERT INTO books
	(author, title, publication, copyright_year, physical_description, series, isbn, subject,
	 call_number, accession_number, location, total_copies, available_copies, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		b.Author, b.Title, b.Publication, b.CopyrightYear, b.PhysicalDescription, b.Series, b.ISBN, b.Subject,
		b.CallNumber, b.AccessionNumber, b.Location, b.TotalCopies, b.AvailableCopies, b.CreatedAt, b.UpdatedAt,
	)
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

func (s *Store) updateBook(ctx context.Context, q db.DBTX, b *Book) error {
	const query = `
	UPDATE books SET
		author = ?, title = ?, publication = ?, copyright_year = ?,
		physical_description = ?, series = ?, isbn = ?, subject = ?,
		call_number = ?, accession_number = ?, location = ?,
		total_copies = ?, available_copies = ?, updated_at = ?
	WHERE id = ?`
	res, err := q.ExecContext(ctx, query,
		b.Author, b.Title, b.Publication, b.CopyrightYear,
		b.PhysicalDescription, b.Series, b.ISBN, b.Subject,
		b.CallNumber, b.AccessionNumber, b.Location,
		b.TotalCopies, b.AvailableCopies, b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return err
	}
	// MySQL reports 0 for an update that changes nothing, so only an error
	// from RowsAffected itself is treated as a failure here.
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

func (s *Store) deleteBook(ctx context.Context, q db.DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return fmt.Errorf("delete book %d: %d rows affected", id, aff)
	}
	return nil
}

// ListBooks orders by title then id. q matches case-insensitively anywhere
// in the chosen column.
func (s *Store) ListBooks(ctx context.Context, f ListFilter) ([]Book, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + bookColumns + ` FROM books WHERE 1=1`)

	args := []any{}
	if f.Q != "" {
		col := ByTitle
		if f.By.valid() {
			col = f.By
		}
		sb.WriteString(fmt.Sprintf(` AND LOWER(%s) LIKE ? ESCAPE '!'`, col))
		args = append(args, "%"+escapeLike(strings.ToLower(f.Q))+"%")
	}
	sb.WriteString(` ORDER BY title ASC, id ASC`)

	out := []Book{}
	if err := s.db.SelectContext(ctx, &out, sb.String(), args...); err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
