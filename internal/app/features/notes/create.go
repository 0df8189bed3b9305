// internal/app/features/notes/create.go
package notes

import (
	"net/http"
)

// Create handles POST /notes. The payload is a wire-shaped note; the
// response is the stored document including its new id and audit fields.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)

	payload, err := h.decodeBody(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := h.svc.Create(r.Context(), uc, h.svc.Spec().Decode(payload))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.encode(uc, doc))
}
