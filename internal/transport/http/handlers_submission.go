package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/platform/middleware"
	"persona/internal/submission"
)

type SubmissionHandler struct {
	service *submission.Service
}

func NewSubmissionHandler(service *submission.Service) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

func (h *SubmissionHandler) Register(r chi.Router) {
	r.Post("/submissions", h.handleCreate)
	r.Get("/submissions/approved", h.handleApproved)
	r.Get("/submissions/pending", h.handlePending)
	r.Patch("/submissions/{submissionID}/status", h.handleUpdateStatus)
}

func (h *SubmissionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input submission.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	sub, err := h.service.CreateSubmission(r.Context(), modeOf(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) handleApproved(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var profileID *uuid.UUID
	if raw := q.Get("profileId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, domain.NewValidationError("profileId", "must be a valid id"))
			return
		}
		profileID = &parsed
	}

	subs, err := h.service.GetApprovedSubmissions(r.Context(), profileID, q.Get("firstName"), q.Get("lastName"))
	if err != nil {
		writeError(w, err)
		return
	}
	if subs == nil {
		subs = []*submission.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) handlePending(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.GetPendingSubmissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if subs == nil {
		subs = []*submission.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	submissionID, err := uuid.Parse(chi.URLParam(r, "submissionID"))
	if err != nil {
		writeError(w, domain.NewValidationError("submissionID", "must be a valid id"))
		return
	}

	reviewer := middleware.GetUserID(r.Context())
	if reviewer == "" {
		writeError(w, domain.ErrAuthRequired)
		return
	}

	var body struct {
		Status submission.Status `json:"status"`
		Notes  string            `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	sub, err := h.service.UpdateSubmissionStatus(r.Context(), submissionID, body.Status, reviewer, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
