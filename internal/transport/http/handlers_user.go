package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/store"
)

const defaultHistoryLimit = 50

// UserHandler serves the per-owner reads and writes: history, favorites,
// profile, account. Every operation resolves its backend through the selector
// so guest and authenticated sessions share one code path.
type UserHandler struct {
	stores *store.Selector
}

func NewUserHandler(stores *store.Selector) *UserHandler {
	return &UserHandler{stores: stores}
}

func (h *UserHandler) Register(r chi.Router) {
	r.Get("/history", h.handleGetHistory)
	r.Delete("/history", h.handleDeleteAllHistory)
	r.Delete("/history/{historyID}", h.handleDeleteHistoryEntry)

	r.Get("/favorites", h.handleGetFavorites)
	r.Post("/favorites", h.handleAddFavorite)
	r.Get("/favorites/status", h.handleFavoriteStatus)
	r.Delete("/favorites/{favoriteID}", h.handleRemoveFavorite)
	r.Patch("/favorites/{favoriteID}/label", h.handleUpdateFavoriteLabel)

	r.Get("/profile", h.handleGetProfile)
	r.Patch("/profile", h.handleUpdateProfile)
	r.Delete("/account", h.handleDeleteAccount)
}

func (h *UserHandler) backend(r *http.Request) (store.Store, string) {
	mode := modeOf(r)
	return h.stores.Select(mode), mode.OwnerID()
}

func (h *UserHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, domain.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	backend, owner := h.backend(r)
	entries, err := backend.GetHistory(r.Context(), owner, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.SearchHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) handleDeleteAllHistory(w http.ResponseWriter, r *http.Request) {
	backend, owner := h.backend(r)
	if err := backend.DeleteAllHistory(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleDeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	historyID, err := uuid.Parse(chi.URLParam(r, "historyID"))
	if err != nil {
		writeError(w, domain.NewValidationError("historyID", "must be a valid id"))
		return
	}

	backend, owner := h.backend(r)
	if err := backend.DeleteHistoryEntry(r.Context(), owner, historyID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleGetFavorites(w http.ResponseWriter, r *http.Request) {
	backend, owner := h.backend(r)
	favorites, err := backend.GetFavorites(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if favorites == nil {
		favorites = []*domain.FavoriteEntry{}
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (h *UserHandler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		QueryID uuid.UUID `json:"queryId"`
		Label   *string   `json:"label,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}
	if body.QueryID == uuid.Nil {
		writeError(w, domain.NewValidationError("queryId", "is required"))
		return
	}

	backend, owner := h.backend(r)
	entry, err := backend.AddFavorite(r.Context(), owner, body.QueryID, body.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *UserHandler) handleFavoriteStatus(w http.ResponseWriter, r *http.Request) {
	queryID, err := uuid.Parse(r.URL.Query().Get("queryId"))
	if err != nil {
		writeError(w, domain.NewValidationError("queryId", "must be a valid id"))
		return
	}

	backend, owner := h.backend(r)
	favorited, err := backend.IsFavorited(r.Context(), owner, queryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *UserHandler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID, err := uuid.Parse(chi.URLParam(r, "favoriteID"))
	if err != nil {
		writeError(w, domain.NewValidationError("favoriteID", "must be a valid id"))
		return
	}

	backend, owner := h.backend(r)
	if err := backend.RemoveFavorite(r.Context(), owner, favoriteID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleUpdateFavoriteLabel(w http.ResponseWriter, r *http.Request) {
	favoriteID, err := uuid.Parse(chi.URLParam(r, "favoriteID"))
	if err != nil {
		writeError(w, domain.NewValidationError("favoriteID", "must be a valid id"))
		return
	}

	var body struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	backend, owner := h.backend(r)
	entry, err := backend.UpdateFavoriteLabel(r.Context(), owner, favoriteID, body.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *UserHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	backend, owner := h.backend(r)
	profile, err := backend.GetProfile(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName *string `json:"firstName,omitempty"`
		LastName  *string `json:"lastName,omitempty"`
		Email     *string `json:"email,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}
	patch := store.UserProfilePatch{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	}

	backend, owner := h.backend(r)
	profile, err := backend.UpdateProfile(r.Context(), owner, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	backend, owner := h.backend(r)
	if err := backend.DeleteAccount(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
