package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"pennypal/internal/core"
)

type appendCall struct {
	Range  string
	Query  string
	Values [][]any
}

// fakeSheets records values:append calls.
type fakeSheets struct {
	mu    sync.Mutex
	calls []appendCall
}

func (f *fakeSheets) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /v4/spreadsheets/{id}/values/{range}:append
		path := r.URL.Path
		i := strings.Index(path, "/values/")
		if r.Method != http.MethodPost || i < 0 || !strings.HasSuffix(path, ":append") {
			http.Error(w, "unexpected request "+r.Method+" "+path, http.StatusBadRequest)
			return
		}
		rng := strings.TrimSuffix(path[i+len("/values/"):], ":append")

		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		f.mu.Lock()
		f.calls = append(f.calls, appendCall{Range: rng, Query: r.URL.RawQuery, Values: body.Values})
		f.mu.Unlock()

		sheet := strings.SplitN(rng, "!", 2)[0]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates":       map[string]any{"updatedRange": sheet + "!A2:G2", "updatedRows": 1},
		})
	})
}

func newTestClient(t *testing.T, cfg Config) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = "sheet-1"
	}
	c, err := New(context.Background(), cfg,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c, fake
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet id")

	_, err = New(context.Background(), Config{SpreadsheetID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestAppend_WritesExpenseToYearSheet(t *testing.T) {
	c, fake := newTestClient(t, Config{})

	ref, err := c.Append(context.Background(), core.Expense{
		ID:          42,
		CategoryID:  3,
		Amount:      core.Money{Cents: 1999},
		Description: "Groceries",
		Type:        core.OneTime,
		ExpenseDate: core.NewDate(2024, 5, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024 Expenses!A2:G2", ref)

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "2024 Expenses!A:G", call.Range)
	assert.Contains(t, call.Query, "valueInputOption=USER_ENTERED")
	assert.Contains(t, call.Query, "insertDataOption=INSERT_ROWS")
	require.Len(t, call.Values, 1)
	assert.Equal(t, []any{"2024-05-02", "Groceries", float64(3), "19.99", "ONE_TIME", "", float64(42)}, call.Values[0])
}

func TestAppend_RejectsUnsavedExpense(t *testing.T) {
	c, fake := newTestClient(t, Config{})
	_, err := c.Append(context.Background(), core.Expense{Description: "x"})
	require.Error(t, err)
	assert.Empty(t, fake.calls)
}

func TestAppendActivity(t *testing.T) {
	c, fake := newTestClient(t, Config{ActivitySheet: "Log"})

	_, err := c.AppendActivity(context.Background(), core.Activity{
		UserID:      "u-1",
		Action:      core.ActionCreated,
		Entity:      core.EntityIncome,
		EntityID:    9,
		AmountCents: 250000,
		OccurredAt:  time.Date(2024, 1, 31, 18, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "Log!A:F", fake.calls[0].Range)
	assert.Equal(t, []any{"2024-01-31 18:04:05", "u-1", core.EntityIncome, core.ActionCreated, float64(9), "2500.00"}, fake.calls[0].Values[0])
}

func TestAppend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{SpreadsheetID: "s"},
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication(), goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.AppendActivity(context.Background(), core.Activity{OccurredAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append to Activity!A:F")
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Expenses", 2024, "2024 Expenses"},
		{"2023 Expenses", 2024, "2023 Expenses"},
		{"  Spending ", 2025, "2025 Spending"},
		{"", 2024, ""},
		{"12345", 2024, "2024 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
