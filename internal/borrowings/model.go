package borrowings

import "time"

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Active loans hold a copy of the book.
func (s Status) Active() bool { return s == StatusBorrowed || s == StatusOverdue }

const (
	maxActiveLoans = 5
	loanPeriodDays = 14
)

type Borrowing struct {
	ID           int64      `db:"id"`
	Reference    string     `db:"reference"`
	UserID       int64      `db:"user_id"`
	BookID       int64      `db:"book_id"`
	BorrowedDate time.Time  `db:"borrowed_date"`
	DueDate      time.Time  `db:"due_date"`
	ReturnedDate *time.Time `db:"returned_date"`
	Status       Status     `db:"status"`
	Notes        *string    `db:"notes"`
}

// overdueAt reports whether a borrowed loan is past its due date at now.
func (b Borrowing) overdueAt(now time.Time) bool {
	return b.Status == StatusBorrowed && b.DueDate.Before(now)
}

// loanRow is a Borrowing joined with the fields listings show.
type loanRow struct {
	Borrowing
	Title      string  `db:"title"`
	Author     string  `db:"author"`
	ISBN       string  `db:"isbn"`
	CallNumber string  `db:"call_number"`
	Username   *string `db:"username"`
}

// bookState is the slice of a book row the engine reads under lock.
type bookState struct {
	ID              int64  `db:"id"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	TotalCopies     int    `db:"total_copies"`
	AvailableCopies int    `db:"available_copies"`
}
