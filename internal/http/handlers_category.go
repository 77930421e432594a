package http

import (
	"net/http"

	"pennypal/internal/core"
	"pennypal/internal/log"
)

type categoryInput struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseCategoryKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	cats, err := s.svc.Categories.List(r.Context(), currentUser(r), kind)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewResponse().List(cats, len(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	kind, err := core.ParseCategoryKind(in.Kind)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), currentUser(r), core.Category{Name: in.Name, Kind: kind})
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).Data(c).Write(w)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	c, err := s.svc.Categories.Rename(r.Context(), currentUser(r), id, in.Name)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().Data(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Data(map[string]string{"message": "Category deleted"}).Write(w)
}
