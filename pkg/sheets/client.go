package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/campuskeep/staffdir-backend/pkg/config"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

var (
	errSpreadsheetRequired = errors.New("spreadsheet id is required")
	errTabNotFound         = errors.New("spreadsheet tab not found")
)

// Client wraps the Sheets API for a single spreadsheet tab used as an
// append/scan/delete row store.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	tab           string
	sheetID       int64
}

func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.SheetsConfig, logg *logger.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errSpreadsheetRequired
	}

	opts := append(clientOptions(gcp), option.WithScopes(sheetsapi.SpreadsheetsScope))
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	client := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tab:           cfg.Tab,
	}

	if err := client.resolveSheetID(ctx); err != nil {
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "sheets client initialized")
	}

	return client, nil
}

func (c *Client) resolveSheetID(ctx context.Context) error {
	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fetching spreadsheet metadata: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.tab {
			c.sheetID = sheet.Properties.SheetId
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errTabNotFound, c.tab)
}

// AppendRow appends one row at the bottom of the tab.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	values := make([]any, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.tab, &sheetsapi.ValueRange{Values: [][]any{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending row: %w", err)
	}
	return nil
}

// ReadRows returns every populated row of the tab, header included, with
// cells coerced to strings.
func (c *Client) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, c.tab).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteRow removes the row at the given zero-based index, shifting the
// rows below it up.
func (c *Client) DeleteRow(ctx context.Context, rowIndex int) error {
	if rowIndex < 0 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    c.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting row %d: %w", rowIndex, err)
	}
	return nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}
