package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSpreadsheet talks to a Google Sheets document through the
// Sheets API. Credentials come from the given service-account file, or
// from application-default credentials when the path is empty.
type GoogleSpreadsheet struct {
	svc *sheets.Service
	id  string
}

// OpenGoogle connects to the document with the given opaque ID.
func OpenGoogle(ctx context.Context, spreadsheetID, credentialsFile string) (*GoogleSpreadsheet, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &GoogleSpreadsheet{svc: svc, id: spreadsheetID}, nil
}

// Worksheet returns a handle for the named sheet. The sheet is not
// checked for existence here; a missing sheet surfaces on first read.
func (s *GoogleSpreadsheet) Worksheet(name string) Worksheet {
	return &googleWorksheet{svc: s.svc, id: s.id, name: name}
}

type googleWorksheet struct {
	svc  *sheets.Service
	id   string
	name string
}

func (w *googleWorksheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.id, quoteSheet(w.name)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", w.name, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = cellStrings(row)
	}
	return rows, nil
}

func (w *googleWorksheet) Row(ctx context.Context, n int) ([]string, error) {
	rng := fmt.Sprintf("%s!%d:%d", quoteSheet(w.name), n, n)
	resp, err := w.svc.Spreadsheets.Values.Get(w.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", n, w.name, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return cellStrings(resp.Values[0]), nil
}

func (w *googleWorksheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", quoteSheet(w.name), columnLetters(col), row)
	vr := &sheets.ValueRange{Values: [][]any{{value}}}
	_, err := w.svc.Spreadsheets.Values.Update(w.id, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating cell %s: %w", rng, err)
	}
	return nil
}

func (w *googleWorksheet) AppendRow(ctx context.Context, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]any{cells}}
	_, err := w.svc.Spreadsheets.Values.Append(w.id, quoteSheet(w.name)+"!A1", vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending row to %q: %w", w.name, err)
	}
	return nil
}

// IsMissingSheet reports whether err means the named worksheet does not
// exist. The Values API signals this as a range parse failure.
func IsMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")
}

// quoteSheet wraps a sheet name in single quotes for A1 notation, which
// is required for names containing spaces or non-ASCII characters.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetters converts a 1-based column index to A1 letters.
func columnLetters(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
