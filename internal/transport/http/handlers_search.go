package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/search"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(r chi.Router) {
	r.Post("/search", h.handleSearch)
	r.Get("/search/{queryID}", h.handleGetResult)
	r.Delete("/search/{queryID}", h.handleDeleteQuery)
}

func (h *SearchHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var input search.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	outcome, err := h.service.SearchPerson(r.Context(), modeOf(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *SearchHandler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		writeError(w, domain.NewValidationError("queryID", "must be a valid id"))
		return
	}

	outcome, err := h.service.GetResult(r.Context(), modeOf(r), queryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *SearchHandler) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		writeError(w, domain.NewValidationError("queryID", "must be a valid id"))
		return
	}

	if err := h.service.DeleteQuery(r.Context(), modeOf(r), queryID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
