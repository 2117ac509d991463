package borrowings

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"library-backend/internal/catalog"
)

// BorrowRequest is the body of POST /borrowings/borrow. book_id may arrive
// as a number or a numeric string.
type BorrowRequest struct {
	BookID catalog.FlexInt `json:"book_id" binding:"required,gte=1" swaggertype:"integer"`
	Notes  *string         `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// normalize trims notes; blank notes are dropped.
func (r *BorrowRequest) normalize() {
	if r.Notes == nil {
		return
	}
	n := strings.TrimSpace(*r.Notes)
	r.Notes = &n
	if n == "" {
		r.Notes = nil
	}
}

func borrowMessage(fe validator.FieldError) string {
	if fe.Field() == "notes" {
		return "Notes must not exceed 1000 characters."
	}
	return "Book ID is required."
}

// LoanSummary is what borrow and return report back.
type LoanSummary struct {
	ID           int64      `json:"id"`
	Reference    string     `json:"reference"`
	BookID       int64      `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	BookAuthor   string     `json:"book_author"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedDate *time.Time `json:"returned_date,omitempty"`
	Status       Status     `json:"status"`
	Notes        *string    `json:"notes,omitempty"`
}

type LoanResponse struct {
	Message   string      `json:"message"`
	Borrowing LoanSummary `json:"borrowing"`
}

// LoanView is one row of a loan listing. Username is only filled for the
// admin listing.
type LoanView struct {
	ID           int64      `json:"id"`
	Reference    string     `json:"reference"`
	UserID       int64      `json:"user_id"`
	Username     *string    `json:"username,omitempty"`
	BookID       int64      `json:"book_id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	ISBN         string     `json:"isbn"`
	CallNumber   string     `json:"call_number,omitempty"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedDate *time.Time `json:"returned_date"`
	Status       Status     `json:"status"`
	Notes        *string    `json:"notes"`
}

func toLoanView(r loanRow, withUser bool) LoanView {
	v := LoanView{
		ID:           r.ID,
		Reference:    r.Reference,
		UserID:       r.UserID,
		BookID:       r.BookID,
		Title:        r.Title,
		Author:       r.Author,
		ISBN:         r.ISBN,
		CallNumber:   r.CallNumber,
		BorrowedDate: r.BorrowedDate,
		DueDate:      r.DueDate,
		ReturnedDate: r.ReturnedDate,
		Status:       r.Status,
		Notes:        r.Notes,
	}
	if withUser {
		v.Username = r.Username
	}
	return v
}

func toSummary(b Borrowing, title, author string) LoanSummary {
	return LoanSummary{
		ID:           b.ID,
		Reference:    b.Reference,
		BookID:       b.BookID,
		BookTitle:    title,
		BookAuthor:   author,
		BorrowedDate: b.BorrowedDate,
		DueDate:      b.DueDate,
		ReturnedDate: b.ReturnedDate,
		Status:       b.Status,
		Notes:        b.Notes,
	}
}
