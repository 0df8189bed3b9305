// internal/app/features/notes/update.go
package notes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Update handles PUT /notes/{id}, replacing the whole note. Creation
// audit fields survive the replacement.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)
	id := chi.URLParam(r, "id")

	payload, err := h.decodeBody(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := h.svc.FullUpdateByID(r.Context(), uc, id, h.svc.Spec().Decode(payload))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.encode(uc, doc))
}

// Patch handles PATCH /notes/{id}, merging only the supplied fields.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)
	id := chi.URLParam(r, "id")

	payload, err := h.decodeBody(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := h.svc.PartialUpdateByID(r.Context(), uc, id, h.svc.Spec().DecodePartial(payload))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.encode(uc, doc))
}
