package http

import (
	"net/http"

	"pennypal/internal/core"
	"pennypal/internal/log"
	"pennypal/internal/services"
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	f, err := ParseIncomeFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	incomes, err := s.svc.Incomes.List(r.Context(), currentUser(r), f)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewResponse().List(incomes, len(incomes)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.IncomeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	i, err := s.svc.Incomes.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentIncome).InfoContext(r.Context(), "Income created",
		log.NewFields().WithEntity(i.UserID, core.EntityIncome, i.ID).ToSlice()...)
	NewResponse().Status(http.StatusCreated).Data(i).Write(w)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	i, err := s.svc.Incomes.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Data(i).Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	var in services.IncomeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	i, err := s.svc.Incomes.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().Data(i).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if err := s.svc.Incomes.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Data(map[string]string{"message": "Income deleted"}).Write(w)
}
