package borrowings

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/validation"
)

// ===== interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// how long the detached overdue update may run after a listing
const overduePersistTimeout = 2 * time.Second

// ===== Service =====

type Service struct {
	db    *sqlx.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(conn *sqlx.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// Borrow checks the borrow rules and, in one transaction, takes a copy off
// the shelf and records the loan. Either both writes land or neither does.
func (s *Service) Borrow(ctx context.Context, id auth.Identity, req BorrowRequest) (*LoanSummary, error) {
	if id.IsGuest() {
		return nil, apperr.ErrForbidden("Only registered members can borrow books.")
	}

	req.normalize()
	if err := validation.Check(&req, borrowMessage); err != nil {
		return nil, err
	}

	ref, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.now()
	loan := &Borrowing{
		Reference:    ref,
		UserID:       id.UserID,
		BookID:       int64(req.BookID.Value),
		BorrowedDate: now,
		DueDate:      now.AddDate(0, 0, loanPeriodDays),
		Status:       StatusBorrowed,
		Notes:        req.Notes,
	}

	var book *bookState
	err = db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.store.lockUser(ctx, tx, loan.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrForbidden("Only registered members can borrow books.")
		}

		snap, b, err := s.store.snapshot(ctx, tx, loan.UserID, loan.BookID)
		if err != nil {
			return err
		}
		if err := checkBorrow(snap); err != nil {
			return err
		}
		book = b

		// re-checked by the write itself
		took, err := s.store.takeCopy(ctx, tx, loan.BookID)
		if err != nil {
			return err
		}
		if !took {
			return errUnavailable()
		}
		return s.store.insertBorrowing(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	out := toSummary(*loan, book.Title, book.Author)
	return &out, nil
}

// Return closes one of the caller's active loans and puts the copy back.
func (s *Service) Return(ctx context.Context, id auth.Identity, loanID int64) (*LoanSummary, error) {
	if id.IsGuest() {
		return nil, apperr.ErrForbidden("Only registered members can return books.")
	}
	notFound := apperr.ErrNotFound("Borrowing record not found or already returned.")
	if loanID <= 0 {
		return nil, notFound
	}

	var out LoanSummary
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.store.lockUser(ctx, tx, id.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound
		}

		row, err := s.store.activeLoanOf(ctx, tx, loanID, id.UserID)
		if err != nil {
			return err
		}
		if row == nil {
			return notFound
		}

		now := s.now()
		ok, err = s.store.markReturned(ctx, tx, loanID, now)
		if err != nil {
			return err
		}
		if !ok {
			return notFound
		}
		if err := s.store.putBack(ctx, tx, row.BookID); err != nil {
			return err
		}

		loan := row.Borrowing
		loan.Status = StatusReturned
		loan.ReturnedDate = &now
		out = toSummary(loan, row.Title, row.Author)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) ListForUser(ctx context.Context, id auth.Identity) ([]LoanView, error) {
	if id.IsGuest() {
		return nil, apperr.ErrForbidden("Only registered members can view borrowings.")
	}
	rows, err := s.store.ListLoans(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	s.applyOverdue(ctx, rows)

	out := make([]LoanView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toLoanView(r, false))
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context, id auth.Identity) ([]LoanView, error) {
	if !id.IsAdmin {
		return nil, apperr.ErrForbidden("Only administrators can view all borrowings.")
	}
	rows, err := s.store.ListLoans(ctx, 0)
	if err != nil {
		return nil, err
	}
	s.applyOverdue(ctx, rows)

	out := make([]LoanView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toLoanView(r, true))
	}
	return out, nil
}

// applyOverdue reports every borrowed loan past its due date as overdue and
// tries to persist that. The write is detached from the request and bounded;
// its failure is only logged.
func (s *Service) applyOverdue(ctx context.Context, rows []loanRow) {
	now := s.now()
	var ids []int64
	for i := range rows {
		if rows[i].overdueAt(now) {
			rows[i].Status = StatusOverdue
			ids = append(ids, rows[i].ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), overduePersistTimeout)
	defer cancel()
	n, err := s.store.MarkOverdue(pctx, ids)
	if err != nil {
		slog.WarnContext(ctx, "persist overdue status failed", "loans", len(ids), "error", err)
		return
	}
	slog.DebugContext(ctx, "loans marked overdue", "count", n)
}
