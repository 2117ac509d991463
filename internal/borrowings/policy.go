package borrowings

import (
	"fmt"

	"library-backend/internal/platform/apperr"
)

// borrowSnapshot is everything the borrow rules look at, read inside the
// borrow transaction.
type borrowSnapshot struct {
	BookFound       bool
	AvailableCopies int
	AlreadyBorrowed bool
	ActiveLoans     int
}

// checkBorrow applies the borrow rules in order; the first one that fails
// decides the error.
func checkBorrow(s borrowSnapshot) error {
	switch {
	case !s.BookFound:
		return apperr.ErrNotFound("Book not found.")
	case s.AvailableCopies <= 0:
		return errUnavailable()
	case s.AlreadyBorrowed:
		return apperr.ErrDuplicateLoan("You have already borrowed this book.")
	case s.ActiveLoans >= maxActiveLoans:
		return apperr.ErrLimitExceeded(
			fmt.Sprintf("You have reached the maximum borrowing limit of %d books.", maxActiveLoans),
		).With("limit", maxActiveLoans)
	}
	return nil
}

func errUnavailable() error {
	return apperr.ErrUnavailable("This book is currently not available for borrowing.")
}
