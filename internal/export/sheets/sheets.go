// Package sheets exports archived budget periods to a Google Sheets
// spreadsheet. The export is best-effort: the archive service calls it after
// a successful archive and only logs failures.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/services"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ services.ArchiveExporter = (*Exporter)(nil)

// New creates an exporter using Service Account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Archive"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// ExportArchivedPeriod appends one summary row per archive followed by one
// row per frozen expense.
func (e *Exporter) ExportArchivedPeriod(ctx context.Context, userID string, p core.ArchivedPeriod) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{{
		p.ID,
		userID,
		p.PeriodStart.UTC().Format("2006-01-02"),
		p.PeriodEnd.UTC().Format("2006-01-02"),
		len(p.Expenses),
		p.TotalSpent.Units(),
		p.ArchivedAt.UTC().Format(time.RFC3339),
	}}
	for _, exp := range p.Expenses {
		rows = append(rows, []any{
			p.ID,
			userID,
			exp.Date.UTC().Format("2006-01-02"),
			exp.Category,
			exp.Amount.Units(),
			exp.Note,
		})
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(cctx).Do()
	if err != nil {
		return fmt.Errorf("append archive rows to sheet %s: %w", e.sheetName, err)
	}
	return nil
}
