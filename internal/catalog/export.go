package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"library-backend/internal/platform/auth"
)

var exportHeader = []string{
	"id", "title", "author", "publication", "copyright_year", "physical_description", "series",
	"isbn", "subject", "call_number", "accession_number", "location", "total_copies", "available_copies",
}

// ExportCSV writes the whole catalog as UTF-8 CSV with a BOM so spreadsheet
// tools pick the right encoding.
func (s *Service) ExportCSV(ctx context.Context, id auth.Identity, w io.Writer) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	books, err := s.ListBooks(ctx, ListFilter{})
	if err != nil {
		return err
	}

	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, b := range books {
		series := ""
		if b.Series != nil {
			series = *b.Series
		}
		record := []string{
			strconv.FormatInt(b.ID, 10), b.Title, b.Author, b.Publication, strconv.Itoa(b.CopyrightYear),
			b.PhysicalDescription, series, b.ISBN, b.Subject, b.CallNumber, b.AccessionNumber, b.Location,
			strconv.Itoa(b.TotalCopies), strconv.Itoa(b.AvailableCopies),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return tw.Close()
}
