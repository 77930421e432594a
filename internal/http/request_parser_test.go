package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pennypal/internal/core"
)

func TestParseExpenseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    core.ExpenseFilter
		wantErr string
	}{
		{
			name:  "empty query",
			query: url.Values{},
			want:  core.ExpenseFilter{},
		},
		{
			name: "all values",
			query: url.Values{
				"startDate":       {"2024-03-01"},
				"endDate":         {"2024-03-31"},
				"categoryId":      {"4"},
				"type":            {"recurring"},
				"includeUpcoming": {"true"},
			},
			want: core.ExpenseFilter{
				StartDate:       core.NewDate(2024, 3, 1),
				EndDate:         core.NewDate(2024, 3, 31),
				CategoryID:      4,
				Type:            core.Recurring,
				IncludeUpcoming: true,
			},
		},
		{
			name:  "month bounds",
			query: url.Values{"startDate": {"2024-02"}, "endDate": {"2024-02"}},
			want: core.ExpenseFilter{
				StartDate: core.NewDate(2024, 2, 1),
				EndDate:   core.NewDate(2024, 2, 29),
			},
		},
		{name: "bad start date", query: url.Values{"startDate": {"03/01/2024"}}, wantErr: "startDate"},
		{name: "bad end month", query: url.Values{"endDate": {"2024-13"}}, wantErr: "endDate"},
		{name: "bad category", query: url.Values{"categoryId": {"-1"}}, wantErr: "categoryId"},
		{name: "bad type", query: url.Values{"type": {"WEEKLY"}}, wantErr: "type"},
		{name: "bad flag", query: url.Values{"includeUpcoming": {"maybe"}}, wantErr: "includeUpcoming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpenseFilter(tt.query)
			if tt.wantErr != "" {
				var verr *core.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ParseExpenseFilter() error = %v, want validation error", err)
				}
				if verr.Field != tt.wantErr {
					t.Errorf("field = %q, want %q", verr.Field, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExpenseFilter() error = %v", err)
			}
			if !got.StartDate.Equal(tt.want.StartDate) || !got.EndDate.Equal(tt.want.EndDate) ||
				got.CategoryID != tt.want.CategoryID || got.Type != tt.want.Type ||
				got.IncludeUpcoming != tt.want.IncludeUpcoming {
				t.Errorf("ParseExpenseFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseIncomeFilter(t *testing.T) {
	f, err := ParseIncomeFilter(url.Values{"startDate": {"2024-01-01"}, "categoryId": {"11"}})
	if err != nil {
		t.Fatalf("ParseIncomeFilter() error = %v", err)
	}
	if !f.StartDate.Equal(core.NewDate(2024, 1, 1)) || !f.EndDate.IsEmpty() || f.CategoryID != 11 {
		t.Errorf("ParseIncomeFilter() = %+v", f)
	}

	if _, err := ParseIncomeFilter(url.Values{"endDate": {"2024-13-01"}}); core.OutcomeOf(err) != core.OutcomeValidationFailed {
		t.Errorf("invalid endDate should be a validation error, got %v", err)
	}
}

func TestQueryMonth(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	start, end, err := queryMonth(url.Values{}, "month", now)
	if err != nil || !start.Equal(core.NewDate(2024, 2, 1)) || !end.Equal(core.NewDate(2024, 2, 29)) {
		t.Errorf("default month = %v..%v, %v", start, end, err)
	}

	start, end, err = queryMonth(url.Values{"month": {"2023-11"}}, "month", now)
	if err != nil || !start.Equal(core.NewDate(2023, 11, 1)) || !end.Equal(core.NewDate(2023, 11, 30)) {
		t.Errorf("explicit month = %v..%v, %v", start, end, err)
	}

	if _, _, err := queryMonth(url.Values{"month": {"2023-13"}}, "month", now); err == nil {
		t.Error("month 13 should be rejected")
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses/x", nil)
		req.SetPathValue("id", tt.value)
		got, err := pathID(req)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pathID(%q) = %d, %v", tt.value, got, err)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Rent"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"trailing data", `{"name":"a"} {"name":"b"}`, true},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(httptest.NewRecorder(), req, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && core.OutcomeOf(err) != core.OutcomeValidationFailed {
				t.Errorf("decode errors must be validation failures, got %v", err)
			}
		})
	}
}
