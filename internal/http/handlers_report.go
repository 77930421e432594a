package http

import (
	"net/http"
	"strings"
	"time"

	"pennypal/internal/core"
	"pennypal/internal/log"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryMonth(r.URL.Query(), "month", s.now())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	rep, err := s.svc.Reports.MonthlyReport(r.Context(), currentUser(r), start, end)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Data(rep).Write(w)
}

func (s *Server) handleMonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryMonth(r.URL.Query(), "month", s.now())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	doc, err := s.svc.Reports.MonthlyReportPDF(r.Context(), currentUser(r), start, end)
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}
	writePDF(w, "expense-report-"+start.Format(core.MonthLayout)+".pdf", doc)
}

// handleSummary totals the window [start, end]. Summary endpoints answer with
// the bare object rather than the envelope.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := queryDate(q, "start", lowerBound)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	end, err := queryDate(q, "end", upperBound)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	sum, err := s.svc.Summary.Summary(r.Context(), currentUser(r), start, end)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Bare(sum).Write(w)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		BadRequestError("date: is required in YYYY-MM format").Write(w)
		return
	}
	t, err := time.Parse(core.MonthLayout, v)
	if err != nil {
		BadRequestError("date: must be a month in YYYY-MM format").Write(w)
		return
	}
	sum, err := s.svc.Summary.MonthlySummary(r.Context(), currentUser(r), int(t.Month()), t.Year())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Bare(sum).Write(w)
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.svc.Summary.Alert(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Bare(alert).Write(w)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt64(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	items, err := s.svc.Activity.Recent(r.Context(), currentUser(r), int(limit))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewResponse().List(items, len(items)).Write(w)
}
