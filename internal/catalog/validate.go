package catalog

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/validation"
)

var (
	reISBN10 = regexp.MustCompile(`^\d{9}[\dXx]$`)
	reISBN13 = regexp.MustCompile(`^\d{13}$`)
	reISBNCh = regexp.MustCompile(`^[\dXx-]+$`)
)

func init() {
	validation.RegisterType(func(v reflect.Value) any {
		return v.Interface().(FlexInt).bindingValue()
	}, FlexInt{})
	validation.RegisterRule("isbn_shape", func(fl validator.FieldLevel) bool {
		return validISBN(fl.Field().String())
	})
}

var bookLabels = map[string]string{
	"author":               "Author",
	"title":                "Title",
	"publication":          "Publication",
	"physical_description": "Physical description",
	"series":               "Series",
	"isbn":                 "ISBN",
	"subject":              "Subject",
	"call_number":          "Call number",
	"accession_number":     "Accession number",
	"location":             "Location",
}

func bookMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "copyright_year":
		return "Copyright year must be a positive number."
	case "total_copies":
		return "Total copies must be at least 1."
	case "available_copies":
		return "Available copies must be zero or more."
	}

	label := bookLabels[fe.Field()]
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters.", label, fe.Param())
	case "isbn_shape":
		return "ISBN must be a valid 10 or 13 digit number."
	}
	return label + " is invalid."
}

// validateBook runs the binding rules on an already trimmed request and
// reports their failures together with extra.
func validateBook(r *BookRequest, extra ...apperr.FieldError) error {
	return validation.Check(r, bookMessage, extra...)
}

// validISBN accepts the shape of an ISBN-10 (check digit may be X) or an
// ISBN-13, hyphens allowed. Check digits are not verified.
func validISBN(s string) bool {
	if !reISBNCh.MatchString(s) {
		return false
	}
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			digits = append(digits, s[i])
		}
	}
	d := string(digits)
	return reISBN10.MatchString(d) || reISBN13.MatchString(d)
}
