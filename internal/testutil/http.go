// internal/testutil/http.go
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewJSONRequest creates a request carrying a JSON body plus the trusted
// identity headers the demo app reads its UserContext from.
func NewJSONRequest(method, target, body, userID, orgID string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if orgID != "" {
		req.Header.Set("X-Org-ID", orgID)
	}
	return req
}

// NewUserID returns a fresh hex user id for tests.
func NewUserID() string { return primitive.NewObjectID().Hex() }

// NewOrgID returns a fresh hex org id for tests.
func NewOrgID() string { return primitive.NewObjectID().Hex() }
