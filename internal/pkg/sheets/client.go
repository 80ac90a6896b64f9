package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// valuesAPI is the part of the Sheets values service the exporter needs
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, a1 string) error
	Update(ctx context.Context, spreadsheetID, a1 string, values [][]interface{}) error
}

// Client writes tables into a single Google spreadsheet
type Client struct {
	values        valuesAPI
	spreadsheetID string
}

// New authenticates with a service account key file
func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{values: &serviceValues{srv: srv}, spreadsheetID: spreadsheetID}, nil
}

// SpreadsheetID returns the target spreadsheet
func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// ReplaceTable clears the sheet of a1 and writes header plus rows starting
// at a1.
func (c *Client) ReplaceTable(ctx context.Context, a1 string, header []string, rows [][]string) error {
	sheet := a1
	if i := strings.Index(a1, "!"); i >= 0 {
		sheet = a1[:i]
	}

	if err := c.values.Clear(ctx, c.spreadsheetID, sheet); err != nil {
		logger.Error().Err(err).Str("range", sheet).Msg("Failed to clear sheet")
		return fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toRow(header))
	for _, r := range rows {
		values = append(values, toRow(r))
	}

	if err := c.values.Update(ctx, c.spreadsheetID, a1, values); err != nil {
		logger.Error().Err(err).Str("range", a1).Int("rows", len(rows)).Msg("Failed to write sheet")
		return fmt.Errorf("failed to write sheet %s: %w", a1, err)
	}
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

type serviceValues struct {
	srv *sheetsv4.Service
}

func (s *serviceValues) Clear(ctx context.Context, spreadsheetID, a1 string) error {
	_, err := s.srv.Spreadsheets.Values.Clear(spreadsheetID, a1, &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}

func (s *serviceValues) Update(ctx context.Context, spreadsheetID, a1 string, values [][]interface{}) error {
	vr := &sheetsv4.ValueRange{Values: values}
	_, err := s.srv.Spreadsheets.Values.Update(spreadsheetID, a1, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
