package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"livraria/internal/models"
	"livraria/internal/validate"
)

// Header is the fixed export header.
var Header = []string{"titulo", "autor", "ano_publicacao", "preco"}

// Accepted header names per field, tried in order.
var (
	TitleAliases  = []string{"titulo", "title"}
	AuthorAliases = []string{"autor", "author"}
	YearAliases   = []string{"ano_publicacao", "year"}
	PriceAliases  = []string{"preco", "price"}
)

// WriteCSV writes books in the given order with the fixed header.
// Absent year or price is written as an empty cell.
func WriteCSV(w io.Writer, books []models.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range books {
		if err := cw.Write([]string{b.Title, b.Author, b.YearText(), b.PriceText()}); err != nil {
			return fmt.Errorf("write book %d: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadResult is the outcome of parsing an import file.
type ReadResult struct {
	Books []models.BookInput
	// Skipped counts malformed rows and rows without a title or an author.
	Skipped int
}

// ReadCSV parses every row before returning. Bad year or price values are
// dropped to absent; malformed rows and rows missing title or author are
// skipped.
func ReadCSV(r io.Reader, now time.Time) (ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ReadResult{}, nil
	}
	if err != nil {
		return ReadResult{}, fmt.Errorf("read header: %w", err)
	}

	cols := indexHeader(header)
	var res ReadResult
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			// a malformed row is skipped, the import goes on
			res.Skipped++
			continue
		}
		if err != nil {
			return ReadResult{}, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		title, okTitle := validate.Required(cols.lookup(record, TitleAliases))
		author, okAuthor := validate.Required(cols.lookup(record, AuthorAliases))
		if !okTitle || !okAuthor {
			res.Skipped++
			continue
		}

		in := models.BookInput{Title: title, Author: author}
		if y, ok := validate.YearAt(cols.lookup(record, YearAliases), now); ok {
			in.Year = models.IntPtr(y)
		}
		if p, ok := validate.Price(cols.lookup(record, PriceAliases)); ok {
			in.Price = models.FloatPtr(p)
		}
		res.Books = append(res.Books, in)
	}
	return res, nil
}

type columns map[string]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

// lookup returns the first non-empty value among the aliases.
func (c columns) lookup(record []string, aliases []string) string {
	for _, name := range aliases {
		i, ok := c[name]
		if !ok || i >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[i]); v != "" {
			return v
		}
	}
	return ""
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
