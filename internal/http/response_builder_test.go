package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pennypal/internal/core"
)

func TestResponseBuilder_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Status(http.StatusCreated).Header("X-Test", "1").Data(map[string]int{"id": 7}).Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not set")
	}
	if got := w.Body.String(); got != `{"success":true,"data":{"id":7}}`+"\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestResponseBuilder_ListCountsZero(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().List([]int{}, 0).Write(w)
	if got := w.Body.String(); got != `{"success":true,"data":[],"count":0}`+"\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestResponseBuilder_ErrorAndBare(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError("amount: is required").Write(w)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusBadRequest || body["success"] != false || body["error"] != "amount: is required" {
		t.Errorf("got %d %v", w.Code, body)
	}
	if _, ok := body["data"]; ok {
		t.Error("error envelope must not carry data")
	}

	w = httptest.NewRecorder()
	NewResponse().Bare(core.BudgetAlert{Alert: false, Message: "ok"}).Write(w)
	if got := w.Body.String(); got != `{"alert":false,"message":"ok"}`+"\n" {
		t.Errorf("Bare body = %q", got)
	}
}

func TestStatusAndMessageForErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", core.Invalid("amount", "must be positive"), http.StatusBadRequest, "amount: must be positive"},
		{"wrapped reference", fmt.Errorf("create expense: %w", core.ErrInvalidReference), http.StatusBadRequest, "Invalid user_id or category_id"},
		{"window", core.ErrInvalidWindow, http.StatusBadRequest, core.ErrInvalidWindow.Error()},
		{"occurrence cap", fmt.Errorf("expand expense 3: %w", core.ErrTooManyOccurrences), http.StatusBadRequest, core.ErrTooManyOccurrences.Error()},
		{"expense not found", fmt.Errorf("get: %w", core.ErrExpenseNotFound), http.StatusNotFound, "Expense not found"},
		{"forbidden hides existence", core.ErrForbidden, http.StatusNotFound, "Not found"},
		{"duplicate", core.ErrDuplicate, http.StatusConflict, "Resource already exists"},
		{"unauthorized", core.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), "test", tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body envelope
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Error != tt.wantMsg {
				t.Errorf("body = %+v, want error %q", body, tt.wantMsg)
			}
		})
	}
}
