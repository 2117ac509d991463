package catalog

import "html"

// clean decodes HTML entities until the text stops changing, so values that
// were escaped more than once upstream ("&amp;#x2F;") come back as "/".
func clean(s string) string {
	for i := 0; i < 8; i++ {
		next := html.UnescapeString(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func cleanBook(b *Book) {
	for _, p := range []*string{
		&b.Title, &b.Author, &b.Publication, &b.PhysicalDescription, &b.ISBN,
		&b.Subject, &b.CallNumber, &b.AccessionNumber, &b.Location,
	} {
		*p = clean(*p)
	}
	if b.Series != nil {
		s := clean(*b.Series)
		b.Series = &s
	}
}
