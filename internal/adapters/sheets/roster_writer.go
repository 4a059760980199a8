package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// RosterWriter replaces the contents of a sheet with the dues roster.
type RosterWriter struct {
	svc           *gsheets.Service
	spreadsheetID string
	writeRange    string
}

var _ portssvc.RosterWriter = (*RosterWriter)(nil)

// NewRosterWriterFromFile authenticates with a service account key file.
func NewRosterWriterFromFile(ctx context.Context, credentialsFile string, spreadsheetID string, writeRange string) (*RosterWriter, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}
	return NewRosterWriter(ctx, spreadsheetID, writeRange, option.WithCredentials(creds))
}

func NewRosterWriter(ctx context.Context, spreadsheetID string, writeRange string, opts ...option.ClientOption) (*RosterWriter, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &RosterWriter{svc: svc, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

// WriteRoster clears the target sheet then writes header and rows from the
// range's top-left cell.
func (w *RosterWriter) WriteRoster(ctx context.Context, header []string, rows [][]any) error {
	values := make([][]any, 0, len(rows)+1)
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	values = append(values, head)
	values = append(values, rows...)

	if _, err := w.svc.Spreadsheets.Values.Clear(w.spreadsheetID, sheetName(w.writeRange), &gsheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return apperrors.NewRemoteError("sheets clear", err)
	}
	if _, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID, w.writeRange, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return apperrors.NewRemoteError("sheets update", err)
	}
	return nil
}

// sheetName turns "Dues!A1" into "Dues" so the whole tab is cleared.
func sheetName(a1 string) string {
	if name, _, ok := strings.Cut(a1, "!"); ok {
		return name
	}
	return a1
}
