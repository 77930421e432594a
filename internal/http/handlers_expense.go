package http

import (
	"fmt"
	"net/http"

	"pennypal/internal/core"
	"pennypal/internal/log"
	"pennypal/internal/services"
)

// handleListExpenses returns stored rows and, when a window or
// includeUpcoming is given, the virtual occurrences of recurring expenses.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	entries, err := s.svc.Expenses.List(r.Context(), currentUser(r), f)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if entries == nil {
		entries = []core.LedgerEntry{}
	}
	NewResponse().List(entries, len(entries)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	e, err := s.svc.Expenses.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentExpense).InfoContext(r.Context(), "Expense created",
		log.NewFields().WithEntity(e.UserID, core.EntityExpense, e.ID).ToSlice()...)
	NewResponse().Status(http.StatusCreated).Data(e).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	e, err := s.svc.Expenses.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Data(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().Data(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if err := s.svc.Expenses.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Data(map[string]string{"message": "Expense deleted"}).Write(w)
}

func (s *Server) handleExpenseReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	doc, err := s.svc.Reports.Receipt(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}
	writePDF(w, fmt.Sprintf("expense-%d.pdf", id), doc)
}

func writePDF(w http.ResponseWriter, name string, doc []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
