// Package sheet wraps the spreadsheet service behind small interfaces so
// the repository can be exercised against a fake in tests.
package sheet

import "context"

// Spreadsheet is a single document holding named worksheets.
type Spreadsheet interface {
	Worksheet(name string) Worksheet
}

// Worksheet is one sheet within a document. Rows and columns are
// 1-based, matching the spreadsheet UI.
type Worksheet interface {
	// Rows returns every row of the sheet. Trailing empty cells may be
	// omitted, so callers must bounds-check cell access.
	Rows(ctx context.Context) ([][]string, error)
	// Row returns a single row's cells.
	Row(ctx context.Context, n int) ([]string, error)
	// UpdateCell overwrites one cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
	// AppendRow adds a row after the last row with data.
	AppendRow(ctx context.Context, values []string) error
}
