// internal/app/features/notes/delete.go
package notes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Delete handles DELETE /notes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)
	id := chi.URLParam(r, "id")

	if _, err := h.svc.DeleteByID(r.Context(), uc, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
