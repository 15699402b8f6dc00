// Package sheets is the row-oriented adapter over the Google Sheets backing
// store. All higher components operate on row numbers and column positions;
// A1-notation arithmetic stays confined to this package.
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient authenticates with a service-account JWT and binds the client to
// a single spreadsheet.
func NewClient(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Client, error) {
	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// LoadRows returns every populated row of the worksheet, header included,
// with all cells coerced to strings.
func (c *Client) LoadRows(ctx context.Context, worksheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", worksheet, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRows batch-appends rows after the last populated row.
func (c *Client) AppendRows(ctx context.Context, worksheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, worksheet, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append %d rows to %q: %w", len(rows), worksheet, err)
	}
	return nil
}

// UpdateCell writes a single cell. Row and column are both 1-based; row 1 is
// the header row.
func (c *Client) UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", worksheet, columnName(col), row)
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update cell %s: %w", rng, err)
	}
	return nil
}

// columnName converts a 1-based column index to its A1 letter form.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
