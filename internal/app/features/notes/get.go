// internal/app/features/notes/get.go
package notes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Get handles GET /notes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)
	id := chi.URLParam(r, "id")

	doc, err := h.svc.GetByID(r.Context(), uc, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.encode(uc, doc))
}
