package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string, the way HTML forms post
// them. Set is false for a missing key, null or "".
type FlexInt struct {
	Value int
	Set   bool
	Valid bool
}

func Int(v int) FlexInt { return FlexInt{Value: v, Set: true, Valid: true} }

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}
	f.Set = true

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return nil
	}
	f.Value, f.Valid = int(n), true
	return nil
}

// bindingValue is what binding rules see: nil when the field was left out,
// a value below any minimum when it was not an integer.
func (f FlexInt) bindingValue() *int {
	switch {
	case !f.Set:
		return nil
	case !f.Valid:
		v := math.MinInt32
		return &v
	}
	v := f.Value
	return &v
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// BookRequest is the body of POST /books and PUT /books/:id.
type BookRequest struct {
	Author              string  `json:"author" binding:"required,max=255"`
	Title               string  `json:"title" binding:"required,max=255"`
	Publication         string  `json:"publication" binding:"required,max=255"`
	CopyrightYear       FlexInt `json:"copyright_year" binding:"required,gte=1" swaggertype:"integer"`
	PhysicalDescription string  `json:"physical_description" binding:"required,max=500"`
	Series              *string `json:"series,omitempty" binding:"omitempty,max=255"`
	ISBN                string  `json:"isbn" binding:"required,max=20,isbn_shape"`
	Subject             string  `json:"subject" binding:"required,max=255"`
	CallNumber          string  `json:"call_number" binding:"required,max=50"`
	AccessionNumber     string  `json:"accession_number" binding:"required,max=50"`
	Location            string  `json:"location" binding:"required,max=100"`
	TotalCopies         FlexInt `json:"total_copies" binding:"omitempty,gte=1" swaggertype:"integer"`
	AvailableCopies     FlexInt `json:"available_copies" binding:"omitempty,gte=0" swaggertype:"integer"`
	AllowDuplicateISBN  bool    `json:"allowDuplicateIsbn"`
}

func (r *BookRequest) normalize() {
	for _, p := range []*string{
		&r.Author, &r.Title, &r.Publication, &r.PhysicalDescription, &r.ISBN,
		&r.Subject, &r.CallNumber, &r.AccessionNumber, &r.Location,
	} {
		*p = strings.TrimSpace(*p)
	}
	if r.Series != nil {
		s := strings.TrimSpace(*r.Series)
		if s == "" {
			r.Series = nil
		} else {
			r.Series = &s
		}
	}
}

type BookResponse struct {
	Message string `json:"message"`
	Book    *Book  `json:"book"`
}
