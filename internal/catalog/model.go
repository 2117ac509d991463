package catalog

import "time"

type Book struct {
	ID                  int64     `db:"id" json:"id"`
	Author              string    `db:"author" json:"author"`
	Title               string    `db:"title" json:"title"`
	Publication         string    `db:"publication" json:"publication"`
	CopyrightYear       int       `db:"copyright_year" json:"copyright_year"`
	PhysicalDescription string    `db:"physical_description" json:"physical_description"`
	Series              *string   `db:"series" json:"series"`
	ISBN                string    `db:"isbn" json:"isbn"`
	Subject             string    `db:"subject" json:"subject"`
	CallNumber          string    `db:"call_number" json:"call_number"`
	AccessionNumber     string    `db:"accession_number" json:"accession_number"`
	Location            string    `db:"location" json:"location"`
	TotalCopies         int       `db:"total_copies" json:"total_copies"`
	AvailableCopies     int       `db:"available_copies" json:"available_copies"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// SearchField selects the column ListBooks matches q against.
type SearchField string

const (
	ByTitle   SearchField = "title"
	ByAuthor  SearchField = "author"
	BySubject SearchField = "subject"
	ByISBN    SearchField = "isbn"
)

func (f SearchField) valid() bool {
	switch f {
	case ByTitle, ByAuthor, BySubject, ByISBN:
		return true
	}
	return false
}

type ListFilter struct {
	Q  string
	By SearchField
}
