package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pennypal/internal/auth"
	"pennypal/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.Invalid("body", "request body is required")
		case errors.As(err, &maxErr):
			return core.Invalid("body", "request body is too large")
		default:
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				return verr
			}
			return core.Invalid("body", "invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return core.Invalid("body", "unexpected data after JSON object")
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// dateBound says which end of a YYYY-MM month a bare month resolves to.
type dateBound int

const (
	lowerBound dateBound = iota
	upperBound
)

// queryDate parses YYYY-MM-DD, or YYYY-MM as the first (lowerBound) or last
// (upperBound) day of that month.
func queryDate(q url.Values, key string, bound dateBound) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	if d, err := core.ParseDate(v); err == nil {
		return d, nil
	}
	first, last, err := core.ParseMonth(v)
	if err != nil {
		return core.Date{}, core.Invalid(key, "must be a date in YYYY-MM-DD or YYYY-MM format")
	}
	if bound == upperBound {
		return last, nil
	}
	return first, nil
}

func queryInt64(q url.Values, key string) (int64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, core.Invalid(key, "must be a non-negative integer")
	}
	return n, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, core.Invalid(key, "must be true or false")
	}
	return b, nil
}

// queryMonth parses a YYYY-MM parameter, defaulting to the month of now.
func queryMonth(q url.Values, key string, now time.Time) (core.Date, core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		t := now.UTC()
		return core.MonthBounds(t.Year(), int(t.Month()))
	}
	start, end, err := core.ParseMonth(v)
	if err != nil {
		return core.Date{}, core.Date{}, core.Invalid(key, "must be a month in YYYY-MM format")
	}
	return start, end, nil
}

// ParseExpenseFilter reads the expense list query.
func ParseExpenseFilter(q url.Values) (core.ExpenseFilter, error) {
	var (
		f   core.ExpenseFilter
		err error
	)
	if f.StartDate, err = queryDate(q, "startDate", lowerBound); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "endDate", upperBound); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryInt64(q, "categoryId"); err != nil {
		return f, err
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		if f.Type, err = core.ParseExpenseType(v); err != nil {
			return f, err
		}
	}
	if f.IncludeUpcoming, err = queryBool(q, "includeUpcoming"); err != nil {
		return f, err
	}
	return f, nil
}

// ParseIncomeFilter reads the income list query.
func ParseIncomeFilter(q url.Values) (core.IncomeFilter, error) {
	var (
		f   core.IncomeFilter
		err error
	)
	if f.StartDate, err = queryDate(q, "startDate", lowerBound); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "endDate", upperBound); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryInt64(q, "categoryId"); err != nil {
		return f, err
	}
	return f, nil
}

// currentUser returns the session user set by the auth middleware.
func currentUser(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
