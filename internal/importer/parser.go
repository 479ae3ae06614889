package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Row is one data line of a CSV file, keyed by header name.
type Row struct {
	// Number is the line the record starts on, counting the header as
	// line 1. Blank lines and quoted line breaks are counted, so it matches
	// the line number an editor shows.
	Number int
	values map[string]string
}

// NewRow builds a row from header/value pairs. Used by callers that
// source rows from something other than CSV text.
func NewRow(number int, values map[string]string) Row {
	r := Row{Number: number, values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[normalizeKey(k)] = strings.TrimSpace(v)
	}
	return r
}

// Get returns the trimmed value for field, or "" when the column is
// absent. Lookup ignores case, spaces, underscores and dashes.
func (r Row) Get(field string) string {
	return r.values[normalizeKey(field)]
}

// HasAny reports whether any of fields carries a non-empty value.
func (r Row) HasAny(fields ...string) bool {
	for _, f := range fields {
		if r.Get(f) != "" {
			return true
		}
	}
	return false
}

func normalizeKey(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	return strings.ToLower(s)
}

// Sheet is a parsed CSV header plus a single-use stream of rows.
type Sheet struct {
	Header []string

	reader   *csv.Reader
	keys     []string
	consumed bool
}

// Parse reads the header row and prepares a lazy row stream.
func Parse(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	keys := make([]string, len(header))
	blank := true
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		keys[i] = normalizeKey(h)
		if keys[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, ErrNoHeader
	}

	return &Sheet{Header: header, reader: reader, keys: keys}, nil
}

// ParseString is Parse over in-memory CSV text.
func ParseString(csvText string) (*Sheet, error) {
	return Parse(strings.NewReader(csvText))
}

// Rows yields every data row in file order. A row that cannot be read
// yields a *RowError and iteration continues. The stream is not
// restartable: a second call yields nothing.
func (s *Sheet) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if s.consumed {
			return
		}
		s.consumed = true

		last := 1
		for {
			record, err := s.reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				number := last + 1
				var pe *csv.ParseError
				if errors.As(err, &pe) && pe.StartLine > 0 {
					number = pe.StartLine
				}
				last = number
				if !yield(Row{Number: number}, &RowError{Row: number, Reason: "unreadable line"}) {
					return
				}
				continue
			}
			number, _ := s.reader.FieldPos(0)
			last = number
			if isBlankRecord(record) {
				continue
			}

			row := Row{Number: number, values: make(map[string]string, len(s.keys))}
			for i, key := range s.keys {
				if key == "" {
					continue
				}
				if i < len(record) {
					row.values[key] = strings.TrimSpace(record[i])
				} else {
					row.values[key] = ""
				}
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowError is a row-scoped failure. Its text is the user-facing error
// string collected in ImportResult.Errors.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}
