package http

import (
	"context"
	"net/http"

	"quattrini/internal/core"
	"quattrini/internal/log"
	"quattrini/internal/tracker"
)

type categoriesView struct {
	tracker.Categories
	All []string `json:"all"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string][]string{
		"tags":   list(s.tracker.Tags()),
		"filter": list(s.tracker.FilterTags()),
	}).Write(w)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tag := sanitizeInput(req.Name)
	if err := s.tracker.AddTag(r.Context(), tag); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.mutated(r, log.OpCreate, "tag", tag)
	NoContent().Write(w)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	tag := pathParam(r, "tag")
	if err := s.tracker.DeleteTag(r.Context(), tag); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutated(r, log.OpDelete, "tag", tag)
	NoContent().Write(w)
}

// categoryKind resolves the {kind} segment, writing a 404 when unknown.
func categoryKind(w http.ResponseWriter, r *http.Request) (core.CategoryKind, bool) {
	kind := core.CategoryKind(pathParam(r, "kind"))
	if !kind.IsValid() {
		NotFoundError("unknown category kind").Write(w)
		return "", false
	}
	return kind, true
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind, ok := categoryKind(w, r)
	if !ok {
		return
	}
	c := s.tracker.Categories(kind)
	c.Custom = list(c.Custom)
	NewJSONResponse().JSON(categoriesView{Categories: c, All: c.All()}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	kind, ok := categoryKind(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	name := sanitizeInput(req.Name)
	if err := s.tracker.AddCategory(r.Context(), kind, name); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.mutated(r, log.OpCreate, "category", name)
	NoContent().Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	kind, ok := categoryKind(w, r)
	if !ok {
		return
	}
	name := pathParam(r, "name")
	if err := s.tracker.DeleteCategory(r.Context(), kind, name); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutated(r, log.OpDelete, "category", name)
	NoContent().Write(w)
}

func (s *Server) handleSetCategoryIcon(w http.ResponseWriter, r *http.Request) {
	s.setCategoryAttr(w, r, s.tracker.SetCategoryIcon)
}

func (s *Server) handleSetCategoryColor(w http.ResponseWriter, r *http.Request) {
	s.setCategoryAttr(w, r, s.tracker.SetCategoryColor)
}

func (s *Server) setCategoryAttr(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, category, value string) error) {
	if _, ok := categoryKind(w, r); !ok {
		return
	}
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	name := pathParam(r, "name")
	if err := set(r.Context(), name, sanitizeInput(req.Value)); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "category", name)
	NoContent().Write(w)
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]string{"currency": s.tracker.Currency()}).Write(w)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	currency := sanitizeInput(req.Value)
	if err := s.tracker.SetCurrency(r.Context(), currency); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "currency", currency)
	NewJSONResponse().JSON(map[string]string{"currency": currency}).Write(w)
}
