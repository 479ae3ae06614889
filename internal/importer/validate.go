package importer

import "strings"

// ValidationResult is the outcome of the required-column check for one row.
type ValidationResult struct {
	Row     int
	Missing []string
}

// OK reports whether every required column is present.
func (v ValidationResult) OK() bool {
	return len(v.Missing) == 0
}

// Err returns the row error, or nil when the row passed.
func (v ValidationResult) Err() error {
	if v.OK() {
		return nil
	}
	return &RowError{Row: v.Row, Reason: "missing " + strings.Join(v.Missing, ", ")}
}

// ValidateRow checks row against the required columns of kind. All five
// kinds share this check; only the schema differs.
func ValidateRow(row Row, kind Kind) (ValidationResult, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{Row: row.Number, Missing: schema.Missing(row)}, nil
}
