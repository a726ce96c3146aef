package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"kaamgarau/internal/core"
	"kaamgarau/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and appends spending rows in a Google Sheets ledger. The
// ledger's first row is a header naming the Date, Amount, Category and User
// columns in any order.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
}

var (
	_ ports.SpendingReader   = (*Client)(nil)
	_ ports.SpendingRecorder = (*Client)(nil)
)

// Config selects the spreadsheet and sheet to use.
type Config struct {
	SpreadsheetID string
	LedgerSheet   string
}

// New creates a Sheets client for cfg. LedgerSheet defaults to "Spending".
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	ledger := strings.TrimSpace(cfg.LedgerSheet)
	if ledger == "" {
		ledger = "Spending"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, ledgerSheet: ledger}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SpendingEvents implements ports.SpendingReader. Rows belonging to other
// users or failing to parse are skipped and counted in the log.
func (c *Client) SpendingEvents(ctx context.Context, userID string) ([]core.SpendingEvent, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:D", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get %s: %w", rng, err)
	}

	events, skipped, err := parseLedger(resp.Values, userID)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unparseable ledger rows",
			"sheet", c.ledgerSheet,
			"skipped", skipped)
	}
	return events, nil
}

// RecordSpending implements ports.SpendingRecorder by appending a row.
func (c *Client) RecordSpending(ctx context.Context, userID string, e core.SpendingEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:D", c.ledgerSheet)
	vr := &gsheet.ValueRange{Values: [][]interface{}{ledgerRow(userID, e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets append: %w", err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Spending row appended to Google Sheets",
		"ref", ref,
		"user_id", userID,
		"amount_paisa", e.Amount.Paisa)
	return ref, nil
}

func ledgerRow(userID string, e core.SpendingEvent) []interface{} {
	return []interface{}{
		e.Date.String(),
		strconv.FormatFloat(e.Amount.Rupees(), 'f', 2, 64),
		e.Category,
		userID,
	}
}
