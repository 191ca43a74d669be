// Package sheets implements the ledger contract on the Google Sheets API.
package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cybrella/cybrella-api/pkg/config"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

// Client drives one spreadsheet. It satisfies sheetsync.Ledger. Every call
// carries a bounded timeout; a timeout is a transient failure the caller may
// retry or repair via rebuild.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	callTimeout   time.Duration
}

// NewClient validates configuration and authorizes against the Sheets API.
// A missing spreadsheet ID fails fast before any network call.
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, appErrors.ErrMissingSpreadsheetID
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, callTimeout: timeout}, nil
}

// GetTabs lists the titles of every tab in the spreadsheet.
func (c *Client) GetTabs(ctx context.Context) ([]string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

// CreateTab adds a new empty tab. The API rejects duplicates, so callers
// check existence first.
func (c *Client) CreateTab(ctx context.Context, name string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	return nil
}

// WriteHeader overwrites row 1 with the given header cells.
func (c *Client) WriteHeader(ctx context.Context, tab string, header []string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	rng := fmt.Sprintf("'%s'!A1:%s1", tab, columnLetter(len(header)))
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(header)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header %s: %w", tab, err)
	}
	return nil
}

// ReadColumn returns the populated cells of one column, top to bottom,
// header included.
func (c *Client) ReadColumn(ctx context.Context, tab string, column int) ([]string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	letter := columnLetter(column)
	rng := fmt.Sprintf("'%s'!%s:%s", tab, letter, letter)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read column %s of %s: %w", letter, tab, err)
	}

	cells := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, fmt.Sprint(row[0]))
	}
	return cells, nil
}

// AppendRow appends one row after the last populated row of the tab.
// USER_ENTERED lets the ledger interpret hyperlink formulas.
func (c *Client) AppendRow(ctx context.Context, tab string, row []string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	rng := fmt.Sprintf("'%s'!A:%s", tab, columnLetter(len(row)))
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", tab, err)
	}
	return nil
}

// UpdateCell overwrites a single cell.
func (c *Client) UpdateCell(ctx context.Context, tab string, row, column int, value string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	rng := fmt.Sprintf("'%s'!%s%d", tab, columnLetter(column), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update cell %s of %s: %w", rng, tab, err)
	}
	return nil
}

// UpdateRange bulk-writes rows starting at startRow, one API call total.
func (c *Client) UpdateRange(ctx context.Context, tab string, startRow int, rows [][]string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, toCells(row))
	}
	rng := fmt.Sprintf("'%s'!A%d", tab, startRow)
	vr := &sheets.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update range %s: %w", rng, err)
	}
	return nil
}

// DeleteRow structurally removes one row; subsequent rows shift up.
func (c *Client) DeleteRow(ctx context.Context, tab string, row int) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row, tab, err)
	}
	return nil
}

// ClearRange blanks the given A1-notation range without removing rows.
func (c *Client) ClearRange(ctx context.Context, tab string, rng string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	full := fmt.Sprintf("'%s'!%s", tab, rng)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, full, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear range %s: %w", full, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, tab string) (int64, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("tab %s not found", tab)
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.callTimeout)
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// columnLetter converts a 1-based column index to A1 notation.
func columnLetter(column int) string {
	letters := ""
	for column > 0 {
		column--
		letters = string(rune('A'+column%26)) + letters
		column /= 26
	}
	return letters
}
