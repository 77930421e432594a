// Package google appends expense and activity rows to a Google Sheet using
// a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pennypal/internal/core"
	ports "pennypal/internal/sheets"
)

const (
	DefaultExpensesSheet = "Expenses"
	DefaultActivitySheet = "Activity"
	valueInput           = "USER_ENTERED"
)

var _ ports.Exporter = (*Client)(nil)

// Config selects the spreadsheet and credentials. CredentialsJSON wins over
// CredentialsFile.
type Config struct {
	SpreadsheetID   string
	ActivitySheet   string
	ExpensesSheet   string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	activitySheet string
	// Base name without year; the expense year is prefixed per row.
	expensesBase string
}

// New creates a client authenticated with the configured service account.
// Non-empty opts replace the credential options.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	if len(opts) == 0 {
		creds, err := credentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	activity := strings.TrimSpace(cfg.ActivitySheet)
	if activity == "" {
		activity = DefaultActivitySheet
	}
	expenses := strings.TrimSpace(cfg.ExpensesSheet)
	if expenses == "" {
		expenses = DefaultExpensesSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		activitySheet: activity,
		expensesBase:  expenses,
	}, nil
}

func credentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Append writes the expense to "<year> <expenses sheet>", where year is the
// year of its effective date.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == 0 {
		return "", errors.New("expense has no id")
	}
	date := e.EffectiveDate()
	sheet := yearPrefixedName(c.expensesBase, date.Year())
	row := []any{
		date.String(),
		e.Description,
		e.CategoryID,
		e.Amount.String(),
		string(e.Type),
		string(e.Frequency),
		e.ID,
	}
	return c.appendRow(ctx, sheet+"!A:G", row)
}

// AppendActivity writes one row to the activity sheet.
func (c *Client) AppendActivity(ctx context.Context, a core.Activity) (string, error) {
	row := []any{
		a.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
		a.UserID,
		a.Entity,
		a.Action,
		a.EntityID,
		core.Money{Cents: a.AmountCents}.String(),
	}
	return c.appendRow(ctx, c.activitySheet+"!A:F", row)
}

func (c *Client) appendRow(ctx context.Context, rng string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
