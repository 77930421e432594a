package core

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VirtualOccurrence is one computed instance of a recurring expense. It is
// never persisted.
type VirtualOccurrence struct {
	SourceExpenseID int64
	UserID          string
	CategoryID      int64
	Amount          Money
	Description     string
	Frequency       Frequency
	Date            Date
}

// SyntheticID identifies the occurrence as "{expense_id}_{unixMillis}".
func (v VirtualOccurrence) SyntheticID() string {
	return fmt.Sprintf("%d_%d", v.SourceExpenseID, v.Date.UnixMilli())
}

// LedgerEntry is one row of the expense list: exactly one of Expense or
// Occurrence is set.
type LedgerEntry struct {
	Expense    *Expense
	Occurrence *VirtualOccurrence
}

// StoredEntry wraps a persisted expense.
func StoredEntry(e Expense) LedgerEntry { return LedgerEntry{Expense: &e} }

// VirtualEntry wraps a computed occurrence.
func VirtualEntry(v VirtualOccurrence) LedgerEntry { return LedgerEntry{Occurrence: &v} }

// IsVirtual reports whether the entry is a computed occurrence.
func (l LedgerEntry) IsVirtual() bool { return l.Occurrence != nil }

// Date is the effective date used for ordering.
func (l LedgerEntry) Date() Date {
	if l.Occurrence != nil {
		return l.Occurrence.Date
	}
	return l.Expense.EffectiveDate()
}

func (l LedgerEntry) sourceID() int64 {
	if l.Occurrence != nil {
		return l.Occurrence.SourceExpenseID
	}
	return l.Expense.ID
}

type ledgerJSON struct {
	ID                  any         `json:"id"`
	UserID              string      `json:"user_id"`
	CategoryID          int64       `json:"category_id"`
	Amount              Money       `json:"amount"`
	Description         string      `json:"description"`
	Type                ExpenseType `json:"type"`
	ExpenseDate         Date        `json:"expense_date"`
	StartDate           Date        `json:"start_date"`
	EndDate             Date        `json:"end_date"`
	Frequency           Frequency   `json:"frequency"`
	LastProcessed       Date        `json:"last_processed"`
	IsRecurringInstance bool        `json:"is_recurring_instance"`
	ParentExpenseID     *int64      `json:"parent_expense_id"`
	CreatedAt           any         `json:"created_at,omitempty"`
	UpdatedAt           any         `json:"updated_at,omitempty"`
}

// MarshalJSON renders both variants with the expense shape plus the
// is_recurring_instance and parent_expense_id markers.
func (l LedgerEntry) MarshalJSON() ([]byte, error) {
	if v := l.Occurrence; v != nil {
		parent := v.SourceExpenseID
		return json.Marshal(ledgerJSON{
			ID:                  v.SyntheticID(),
			UserID:              v.UserID,
			CategoryID:          v.CategoryID,
			Amount:              v.Amount,
			Description:         v.Description,
			Type:                Recurring,
			ExpenseDate:         v.Date,
			Frequency:           v.Frequency,
			IsRecurringInstance: true,
			ParentExpenseID:     &parent,
		})
	}
	if l.Expense == nil {
		return []byte("null"), nil
	}
	e := l.Expense
	return json.Marshal(ledgerJSON{
		ID:            e.ID,
		UserID:        e.UserID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Description:   e.Description,
		Type:          e.Type,
		ExpenseDate:   e.ExpenseDate,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		Frequency:     e.Frequency,
		LastProcessed: e.LastProcessed,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	})
}

// SortLedger orders entries by date descending; on equal dates stored rows
// come before virtual ones, then higher source ids first.
func SortLedger(entries []LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if da, db := a.Date(), b.Date(); !da.Equal(db) {
			return da.After(db)
		}
		if a.IsVirtual() != b.IsVirtual() {
			return !a.IsVirtual()
		}
		return a.sourceID() > b.sourceID()
	})
}
