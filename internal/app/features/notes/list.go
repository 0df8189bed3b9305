// internal/app/features/notes/list.go
package notes

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/crudkit/internal/core/query"
)

// listResponse is the paged JSON envelope for GET /notes.
type listResponse struct {
	Entities   []map[string]any `json:"entities"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// List handles GET /notes.
//
// Query parameters: page, page_size, order_by, sort_direction ("asc" or
// "desc"), and q, a case-insensitive substring match against the title.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uc := h.userContext(r)
	opts := h.listOptions(r)

	result, err := h.svc.Get(r.Context(), uc, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := listResponse{
		Entities:   make([]map[string]any, 0, len(result.Entities)),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
	for _, doc := range h.encodeList(uc, result.Entities) {
		resp.Entities = append(resp.Entities, doc)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listOptions(r *http.Request) query.Options {
	opts := query.NewOptions()
	opts.PageSize = h.pageSize

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		opts.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 {
		opts.PageSize = v
	}
	if v := q.Get("order_by"); v != "" {
		opts.OrderBy = v
	}
	if v := q.Get("sort_direction"); v == "asc" || v == "desc" {
		opts.SortDirection = v
	}
	if v := q.Get("q"); v != "" {
		opts.Filters = map[string]query.Filter{
			"title": {Contains: v},
		}
	}
	return opts
}
