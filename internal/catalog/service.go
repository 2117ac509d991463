package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
)

// ===== interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ===== Service =====

type Service struct {
	db    *sqlx.DB
	store *Store
	clock Clock
}

func NewService(conn *sqlx.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: realClock{},
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func requireAdmin(id auth.Identity) error {
	if !id.IsAdmin {
		return apperr.ErrForbidden("Admin access required.")
	}
	return nil
}

func errDuplicateISBN() *apperr.APIError {
	return apperr.ErrConflict("A book with this ISBN already exists.").With("field", "isbn")
}

// AddBook stores a new book with every copy available.
func (s *Service) AddBook(ctx context.Context, id auth.Identity, req BookRequest) (*Book, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validateBook(&req); err != nil {
		return nil, err
	}

	total := 1
	if req.TotalCopies.Set {
		total = req.TotalCopies.Value
	}
	now := s.now()
	b := &Book{
		Author:              req.Author,
		Title:               req.Title,
		Publication:         req.Publication,
		CopyrightYear:       req.CopyrightYear.Value,
		PhysicalDescription: req.PhysicalDescription,
		Series:              req.Series,
		ISBN:                req.ISBN,
		Subject:             req.Subject,
		CallNumber:          req.CallNumber,
		AccessionNumber:     req.AccessionNumber,
		Location:            req.Location,
		TotalCopies:         total,
		AvailableCopies:     total,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if !req.AllowDuplicateISBN {
			taken, err := s.store.isbnTaken(ctx, tx, b.ISBN, 0)
			if err != nil {
				return err
			}
			if taken {
				return errDuplicateISBN()
			}
		}
		return s.store.insertBook(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBooks(ctx context.Context, f ListFilter) ([]Book, error) {
	books, err := s.store.ListBooks(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range books {
		cleanBook(&books[i])
	}
	return books, nil
}

func (s *Service) GetBook(ctx context.Context, bookID int64) (*Book, error) {
	b, err := s.store.getBook(ctx, s.db, bookID, false)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.ErrNotFound("Book not found.")
	}
	cleanBook(b)
	return b, nil
}

// EditBook replaces the book's fields. Omitted total_copies keeps the stored
// value; omitted available_copies becomes total minus the active loans. The
// book row stays locked while the active-loan count is checked.
func (s *Service) EditBook(ctx context.Context, id auth.Identity, bookID int64, req BookRequest) (*Book, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	req.normalize()
	var extra []apperr.FieldError
	if req.TotalCopies.Valid && req.AvailableCopies.Valid && req.AvailableCopies.Value > req.TotalCopies.Value {
		extra = append(extra, apperr.FieldError{Field: "available_copies", Message: "Available copies cannot exceed total copies."})
	}
	if err := validateBook(&req, extra...); err != nil {
		return nil, err
	}

	var out *Book
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		cur, err := s.store.getBook(ctx, tx, bookID, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.ErrNotFound("Book not found.")
		}

		active, err := s.store.countActiveLoans(ctx, tx, bookID)
		if err != nil {
			return err
		}

		total := cur.TotalCopies
		if req.TotalCopies.Set {
			total = req.TotalCopies.Value
		}
		if total < active {
			return apperr.ErrValidation([]apperr.FieldError{{
				Field:   "total_copies",
				Message: fmt.Sprintf("Total copies cannot be less than %d. %d copies are currently borrowed.", active, active),
			}}).With("currently_borrowed", active)
		}

		minAvailable := total - active
		available := minAvailable
		if req.AvailableCopies.Set {
			available = req.AvailableCopies.Value
		}
		if available > total {
			return apperr.ErrValidation([]apperr.FieldError{{
				Field: "available_copies", Message: "Available copies cannot exceed total copies.",
			}})
		}
		if available < minAvailable {
			return apperr.ErrValidation([]apperr.FieldError{{
				Field:   "available_copies",
				Message: fmt.Sprintf("Cannot set available copies below %d. %d copies are currently borrowed.", minAvailable, active),
			}}).With("min_available", minAvailable).With("currently_borrowed", active)
		}

		// allowDuplicateIsbn only applies when adding
		if req.ISBN != cur.ISBN {
			taken, err := s.store.isbnTaken(ctx, tx, req.ISBN, bookID)
			if err != nil {
				return err
			}
			if taken {
				return errDuplicateISBN()
			}
		}

		next := *cur
		next.Author = req.Author
		next.Title = req.Title
		next.Publication = req.Publication
		next.CopyrightYear = req.CopyrightYear.Value
		next.PhysicalDescription = req.PhysicalDescription
		next.Series = req.Series
		next.ISBN = req.ISBN
		next.Subject = req.Subject
		next.CallNumber = req.CallNumber
		next.AccessionNumber = req.AccessionNumber
		next.Location = req.Location
		next.TotalCopies = total
		next.AvailableCopies = available
		next.UpdatedAt = s.now()
		if err := s.store.updateBook(ctx, tx, &next); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBook removes a book with no active loans and returns what was removed.
// Returned loan history goes with it.
func (s *Service) DeleteBook(ctx context.Context, id auth.Identity, bookID int64) (*Book, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	var out *Book
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		cur, err := s.store.getBook(ctx, tx, bookID, true)
		if err != nil {
			return err
		}
		active, err := s.store.countActiveLoans(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.ErrConflict("Cannot delete book that is currently borrowed.").With("currently_borrowed", active)
		}
		if cur == nil {
			return apperr.ErrNotFound("Book not found.")
		}
		if err := s.store.deleteBook(ctx, tx, bookID); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	cleanBook(out)
	return out, nil
}
