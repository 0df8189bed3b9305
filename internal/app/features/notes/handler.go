// internal/app/features/notes/handler.go
package notes

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/crudkit/internal/core/apperr"
	"github.com/dalemusser/crudkit/internal/core/crud"
	"github.com/dalemusser/crudkit/internal/core/query"
	"github.com/dalemusser/crudkit/internal/core/schema"
	"github.com/dalemusser/crudkit/internal/core/tenant"
)

// Default identity header names. The bootstrap config can override both.
const (
	DefaultUserIDHeader = "X-User-ID"
	DefaultOrgIDHeader  = "X-Org-ID"
)

// HandlerConfig carries everything the notes feature needs from bootstrap.
type HandlerConfig struct {
	DB              *mongo.Database
	Tenant          tenant.Config
	UserIDHeader    string
	OrgIDHeader     string
	DefaultPageSize int
	Logger          *zap.Logger
}

// Handler is the shared dependency container for the notes feature. The
// per-verb handlers (list, get, create, update, delete) all go through
// the same entity service and encode outbound documents the same way.
type Handler struct {
	svc          *crud.Service
	public       *schema.Schema
	userIDHeader string
	orgIDHeader  string
	pageSize     int
	log          *zap.Logger
}

// NewHandler constructs the notes Handler. It is typically called from
// the bootstrap BuildHandler function, where the application's DB and
// logger are already initialized.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.UserIDHeader == "" {
		cfg.UserIDHeader = DefaultUserIDHeader
	}
	if cfg.OrgIDHeader == "" {
		cfg.OrgIDHeader = DefaultOrgIDHeader
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = query.DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	svc := crud.New(crud.Config{
		DB:         cfg.DB,
		Collection: "notes",
		Singular:   "note",
		Plural:     "notes",
		Spec:       newSpec(),
		Logger:     cfg.Logger,
		Hooks: crud.Hooks{
			OnBeforeCreate: beforeCreate,
			OnBeforeUpdate: beforeUpdate,
		},
		Strategies: tenant.Strategies(cfg.Tenant),
	})

	return &Handler{
		svc:          svc,
		public:       publicSchema(),
		userIDHeader: cfg.UserIDHeader,
		orgIDHeader:  cfg.OrgIDHeader,
		pageSize:     cfg.DefaultPageSize,
		log:          cfg.Logger,
	}
}

// userContext builds the acting identity from the trusted proxy headers.
// A request without a user header is anonymous, not system.
func (h *Handler) userContext(r *http.Request) crud.UserContext {
	uc := crud.UserContext{OrgID: r.Header.Get(h.orgIDHeader)}
	if id := r.Header.Get(h.userIDHeader); id != "" {
		uc.User = &crud.User{ID: id}
	}
	return uc
}

// encode shapes one stored note for the response. The creator sees the
// full document; everyone else gets the public projection without the
// share token.
func (h *Handler) encode(uc crud.UserContext, doc crud.Document) crud.Document {
	if actor := uc.ActorID(); actor != "" && doc[crud.FieldCreatedBy] == actor {
		return h.svc.Spec().Encode(doc)
	}
	return h.svc.Spec().EncodeWith(doc, h.public)
}

func (h *Handler) encodeList(uc crud.UserContext, docs []crud.Document) []crud.Document {
	out := make([]crud.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, h.encode(uc, d))
	}
	return out
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Errors []apperr.FieldError `json:"errors"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("notes: request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Errors: apperr.Serialize(err)})
}

// decodeBody parses the request payload into a document.
func (h *Handler) decodeBody(r *http.Request) (crud.Document, error) {
	var doc crud.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "invalid JSON payload", err)
	}
	return doc, nil
}
