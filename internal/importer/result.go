package importer

import (
	"fmt"
	"sort"
)

// ImportResult is what the caller of an import renders: a banner, a
// count and the itemized row errors.
type ImportResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Imported  int      `json:"imported"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings,omitempty"`
	TotalRows int      `json:"totalRows"`
	DryRun    bool     `json:"dryRun,omitempty"`
}

// NewResult builds a result. Success holds when at least one record was
// imported or nothing failed.
func NewResult(imported, totalRows int, errs, warnings []*RowError) ImportResult {
	res := ImportResult{
		Success:   imported > 0 || len(errs) == 0,
		Imported:  imported,
		Errors:    Messages(errs),
		Warnings:  Messages(warnings),
		TotalRows: totalRows,
	}
	if len(res.Warnings) == 0 {
		res.Warnings = nil
	}

	switch {
	case len(errs) == 0 && imported == 0:
		res.Message = "No records found in file"
	case len(errs) == 0:
		res.Message = fmt.Sprintf("Imported %d %s", imported, plural(imported, "record"))
	case imported > 0:
		res.Message = fmt.Sprintf("Imported %d %s, %d %s failed", imported, plural(imported, "record"), len(errs), plural(len(errs), "row"))
	default:
		res.Message = fmt.Sprintf("Import failed: %d %s rejected", len(errs), plural(len(errs), "row"))
	}
	return res
}

// FailedResult is a file-level failure: nothing was read or imported.
func FailedResult(err error) ImportResult {
	return ImportResult{Success: false, Message: err.Error(), Errors: []string{}}
}

// Messages renders row errors in row order. Errors on the same row keep
// the order they were raised in.
func Messages(errs []*RowError) []string {
	sorted := make([]*RowError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Row < sorted[j].Row })

	out := make([]string, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.Error())
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
