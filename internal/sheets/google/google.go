package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finanzas/internal/core"
	ports "finanzas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads bank statements from and exports movements to a Google
// spreadsheet.
type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	statementSheet string
	exportSheet    string
}

var (
	_ ports.StatementReader  = (*Client)(nil)
	_ ports.MovementExporter = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet and sheet
// names, normally taken from the application config. Service account
// credentials come from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, statementSheet, exportSheet string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	statementSheet = strings.TrimSpace(statementSheet)
	if statementSheet == "" {
		statementSheet = "Extracto"
	}
	exportSheet = strings.TrimSpace(exportSheet)
	if exportSheet == "" {
		exportSheet = "Movimientos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		statementSheet: statementSheet,
		exportSheet:    exportSheet,
	}, nil
}

// newSheetsService initializes a Sheets service from Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// ReadStatement pulls the raw statement rows. The first row is the
// header and is skipped. Columns: fecha, concepto, importe, cuenta.
func (c *Client) ReadStatement(ctx context.Context) ([]ports.StatementRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:D", c.statementSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read statement %s: %w", rng, err)
	}

	rows := make([]ports.StatementRow, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := ports.StatementRow{}
		if len(raw) > 0 {
			row.Date = cellString(raw[0])
		}
		if len(raw) > 1 {
			row.Description = cellString(raw[1])
		}
		if len(raw) > 2 {
			row.Amount = cellString(raw[2])
		}
		if len(raw) > 3 {
			row.Account = cellString(raw[3])
		}
		if row.Date == "" && row.Description == "" && row.Amount == "" {
			continue
		}
		rows = append(rows, row)
	}

	slog.InfoContext(ctx, "Statement rows read", "sheet", c.statementSheet, "count", len(rows))
	return rows, nil
}

// ExportMovements replaces the export sheet contents with the given
// movements, one row each, header included.
func (c *Client) ExportMovements(ctx context.Context, movements []core.Movement) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A:J", c.exportSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear export sheet %s: %w", c.exportSheet, err)
	}

	values := make([][]any, 0, len(movements)+1)
	values = append(values, []any{"movimiento_id", "fecha", "tipo", "importe", "cuenta", "desde", "hacia", "categoria", "subcategoria", "comentario"})
	for _, m := range movements {
		values = append(values, []any{
			m.ID, m.Date.ISO(), string(m.Kind), m.Amount.String(),
			m.Account, m.FromAccount, m.ToAccount, m.Category, m.Subcategory, m.Note,
		})
	}

	rng := fmt.Sprintf("%s!A1", c.exportSheet)
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write export sheet %s: %w", c.exportSheet, err)
	}

	slog.InfoContext(ctx, "Movements exported to sheet",
		"sheet", c.exportSheet,
		"count", len(movements))
	return nil
}

func cellString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
