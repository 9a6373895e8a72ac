// Package google loads datasets from a Google Sheets spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ventas/internal/core"
	ports "ventas/internal/dataset"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange reads every column of the default sheet.
const DefaultRange = "Facturas!A:P"

// Ensure interface conformance
var _ ports.Source = (*Client)(nil)

// valuesGetter fetches a raw value matrix. It is swapped out in tests.
type valuesGetter func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)

type Client struct {
	spreadsheetID string
	rng           string
	get           valuesGetter
}

// Config selects the spreadsheet and the credentials used to read it.
type Config struct {
	SpreadsheetID string
	Range         string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with service account credentials.
// When neither credential field is set GOOGLE_APPLICATION_CREDENTIALS is used.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	get := func(ctx context.Context, id, rng string) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(id, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return newClient(spreadsheetID, cfg.Range, get), nil
}

func newClient(spreadsheetID, rng string, get valuesGetter) *Client {
	if strings.TrimSpace(rng) == "" {
		rng = DefaultRange
	}
	return &Client{spreadsheetID: spreadsheetID, rng: rng, get: get}
}

// newSheetsService initializes a read-only Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID
}

// Load reads the configured range and parses it as a tabular dataset.
func (c *Client) Load(ctx context.Context) (*core.Dataset, error) {
	if c.get == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.get(ctx, c.spreadsheetID, c.rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng, err)
	}
	d, err := parseValues(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.rng, err)
	}
	slog.DebugContext(ctx, "Loaded dataset from sheet",
		"range", c.rng,
		"rows", len(values),
		"lines", d.Len())
	return d, nil
}
