// internal/core/crud/service.go
package crud

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/crudkit/internal/core/apperr"
	"github.com/dalemusser/crudkit/internal/core/modelspec"
	"github.com/dalemusser/crudkit/internal/core/query"
	"github.com/dalemusser/crudkit/internal/core/schema"
)

// Config wires a Service to one collection. Every dependency is explicit;
// there is no package-level configuration.
type Config struct {
	DB         *mongo.Database
	Collection string
	// Singular/Plural are the resource's display names, used in error
	// messages. They default to the collection name.
	Singular string
	Plural   string
	Spec     *modelspec.Spec
	Logger   *zap.Logger

	Hooks      Hooks
	Strategies Strategies

	// TransformSingle runs last before any document is returned.
	TransformSingle Transform
}

// Service is a generic data-access layer for one collection: CRUD plus
// hooks, audit stamping, validation, and result shaping. Concurrency
// correctness is delegated to the store's per-document atomicity; the
// service itself holds no locks and no mutable state after construction.
type Service struct {
	c          *mongo.Collection
	collection string
	singular   string
	plural     string
	spec       *modelspec.Spec
	log        *zap.Logger
	hooks      Hooks
	strategies Strategies
	transform  Transform
}

// New constructs a Service. Nil hooks, strategies, and transforms fall
// back to pass-through behavior.
func New(cfg Config) *Service {
	if cfg.Singular == "" {
		cfg.Singular = cfg.Collection
	}
	if cfg.Plural == "" {
		cfg.Plural = cfg.Collection
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TransformSingle == nil {
		cfg.TransformSingle = identityTransform
	}
	// A multi-tenant spec with identity strategies means every query
	// reaches the store unscoped. That is almost certainly a wiring
	// mistake in the caller, so make it loud.
	if cfg.Spec != nil && cfg.Spec.MultiTenant && cfg.Strategies.PrepareQuery == nil {
		cfg.Logger.Warn("multi-tenant spec wired without preparation strategies; queries will not be org scoped",
			zap.String("collection", cfg.Collection))
	}
	return &Service{
		c:          cfg.DB.Collection(cfg.Collection),
		collection: cfg.Collection,
		singular:   cfg.Singular,
		plural:     cfg.Plural,
		spec:       cfg.Spec,
		log:        cfg.Logger,
		hooks:      cfg.Hooks.withDefaults(),
		strategies: cfg.Strategies.withDefaults(),
		transform:  cfg.TransformSingle,
	}
}

// Spec exposes the resource's ModelSpec for controllers that encode
// outbound documents.
func (s *Service) Spec() *modelspec.Spec { return s.spec }

// Collection returns the bound collection name.
func (s *Service) Collection() string { return s.collection }

// GetAll returns the entire (prepared) collection, transformed.
func (s *Service) GetAll(ctx context.Context, uc UserContext) ([]Document, error) {
	q, err := s.strategies.PrepareQuery(uc, Document{}, s.collection)
	if err != nil {
		return nil, err
	}
	return s.findDocs(ctx, q, nil)
}

// Get returns one page of the collection matching opts.Filters, with the
// total computed in the same store round trip so the count can never race
// the page contents. No matches yield an empty page, not an error.
func (s *Service) Get(ctx context.Context, uc UserContext, opts query.Options) (query.PagedResult, error) {
	opts, err := s.strategies.PrepareQueryOptions(uc, opts, s.collection)
	if err != nil {
		return query.PagedResult{}, err
	}

	match := query.BuildMongoMatch(opts, tenantExclusions())
	pipeline := []bson.M{{"$match": match}}
	if opts.OrderBy != "" {
		pipeline = append(pipeline, bson.M{"$sort": bson.M{opts.OrderBy: opts.SortValue()}})
	}

	// A $facet pipeline must hold at least one stage, so the unpaged
	// case gets a no-op skip.
	page := []bson.M{{"$skip": int64(0)}}
	if opts.Page > 0 && opts.PageSize > 0 {
		page = append(page[:0],
			bson.M{"$skip": int64(opts.Page-1) * int64(opts.PageSize)},
			bson.M{"$limit": int64(opts.PageSize)},
		)
	}
	pipeline = append(pipeline, bson.M{"$facet": bson.M{
		"entities": page,
		"total":    []bson.M{{"$count": "count"}},
	}})

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return query.PagedResult{}, s.storeErr("list", err)
	}
	defer cur.Close(ctx)

	var facets []struct {
		Entities []Document `bson:"entities"`
		Total    []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &facets); err != nil {
		return query.PagedResult{}, s.storeErr("list", err)
	}

	var entities []Document
	var total int64
	if len(facets) > 0 {
		entities = facets[0].Entities
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].Count
		}
	}
	return query.NewPagedResult(s.transformList(entities), total, opts.Page, opts.PageSize), nil
}

// GetByID fetches one document. The id must be syntactically valid before
// the store is consulted.
func (s *Service) GetByID(ctx context.Context, uc UserContext, id string) (Document, error) {
	oid, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	q, err := s.strategies.PrepareQuery(uc, Document{"_id": oid}, s.collection)
	if err != nil {
		return nil, err
	}
	return s.findOneDoc(ctx, q, id)
}

// GetCount is a fast count of the collection. With an unconstrained
// prepared query it uses the store's estimated count; a tenant-scoped
// query forces an exact count.
func (s *Service) GetCount(ctx context.Context, uc UserContext) (int64, error) {
	q, err := s.strategies.PrepareQuery(uc, Document{}, s.collection)
	if err != nil {
		return 0, err
	}
	if len(q) == 0 {
		n, err := s.c.EstimatedDocumentCount(ctx)
		if err != nil {
			return 0, s.storeErr("count", err)
		}
		return n, nil
	}
	n, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return 0, s.storeErr("count", err)
	}
	return n, nil
}

// Create validates, audit-stamps, and inserts one document, running the
// before/after create hooks around the insert.
func (s *Service) Create(ctx context.Context, uc UserContext, entity Document) (Document, error) {
	doc, err := s.prepareCreate(ctx, uc, entity)
	if err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return nil, s.writeErr(err)
	}
	doc, err = s.hooks.OnAfterCreate(ctx, uc, doc)
	if err != nil {
		return nil, err
	}
	return s.transform(doc), nil
}

// CreateMany is the batch variant of Create: every document goes through
// the same validation, stamping, and hook discipline before a single
// InsertMany.
func (s *Service) CreateMany(ctx context.Context, uc UserContext, entities []Document) ([]Document, error) {
	docs := make([]Document, 0, len(entities))
	raw := make([]any, 0, len(entities))
	for _, entity := range entities {
		doc, err := s.prepareCreate(ctx, uc, entity)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		raw = append(raw, doc)
	}
	if len(raw) == 0 {
		return []Document{}, nil
	}
	if _, err := s.c.InsertMany(ctx, raw); err != nil {
		return nil, s.writeErr(err)
	}
	for i, doc := range docs {
		doc, err := s.hooks.OnAfterCreate(ctx, uc, doc)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}
	return s.transformList(docs), nil
}

func (s *Service) prepareCreate(ctx context.Context, uc UserContext, entity Document) (Document, error) {
	if err := s.validate(s.spec.FullValidator, entity); err != nil {
		return nil, err
	}
	doc := copyDoc(entity)
	stripAudit(doc)
	if s.spec.Auditable {
		stampCreate(doc, uc, time.Now().UTC())
	}
	doc, err := s.strategies.PrepareEntity(uc, doc, s.collection, true)
	if err != nil {
		return nil, err
	}
	doc, err = s.hooks.OnBeforeCreate(ctx, uc, doc)
	if err != nil {
		return nil, err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	return doc, nil
}

// FullUpdateById semantics: the stored body is replaced wholesale, but the
// creation audit pair survives from the existing document, and the result
// is re-fetched from the store so callers see exactly what was persisted.
func (s *Service) FullUpdateByID(ctx context.Context, uc UserContext, id string, entity Document) (Document, error) {
	oid, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(s.spec.FullValidator, entity); err != nil {
		return nil, err
	}
	q, err := s.strategies.PrepareQuery(uc, Document{"_id": oid}, s.collection)
	if err != nil {
		return nil, err
	}

	existing, err := s.rawFindOne(ctx, q, id)
	if err != nil {
		return nil, err
	}

	doc := copyDoc(entity)
	stripAudit(doc)
	delete(doc, "_id")
	if s.spec.Auditable {
		doc[FieldCreated] = existing[FieldCreated]
		doc[FieldCreatedBy] = existing[FieldCreatedBy]
		stampUpdate(doc, uc, time.Now().UTC())
	}
	doc, err = s.strategies.PrepareEntity(uc, doc, s.collection, false)
	if err != nil {
		return nil, err
	}
	doc, err = s.hooks.OnBeforeUpdate(ctx, uc, doc)
	if err != nil {
		return nil, err
	}

	res, err := s.c.ReplaceOne(ctx, q, doc)
	if err != nil {
		return nil, s.writeErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.NewIDNotFound(id)
	}
	return s.afterUpdate(ctx, uc, q, id)
}

// PartialUpdateByID merges only the supplied fields into the document.
func (s *Service) PartialUpdateByID(ctx context.Context, uc UserContext, id string, entity Document) (Document, error) {
	oid, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(s.spec.PartialValidator, entity); err != nil {
		return nil, err
	}
	q, err := s.strategies.PrepareQuery(uc, Document{"_id": oid}, s.collection)
	if err != nil {
		return nil, err
	}

	doc := copyDoc(entity)
	stripAudit(doc)
	delete(doc, "_id")
	if s.spec.Auditable {
		stampUpdate(doc, uc, time.Now().UTC())
	}
	doc, err = s.strategies.PrepareEntity(uc, doc, s.collection, false)
	if err != nil {
		return nil, err
	}
	doc, err = s.hooks.OnBeforeUpdate(ctx, uc, doc)
	if err != nil {
		return nil, err
	}

	res, err := s.c.UpdateOne(ctx, q, bson.M{"$set": doc})
	if err != nil {
		return nil, s.writeErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.NewIDNotFound(id)
	}
	return s.afterUpdate(ctx, uc, q, id)
}

// PartialUpdateByIDWithoutHooks applies the same merge but bypasses the
// before/after hooks, audit stamping, validation, and the preparation
// strategies. It exists for system-driven field updates (login timestamps
// and the like) that must not trigger tenant or validation side effects.
func (s *Service) PartialUpdateByIDWithoutHooks(ctx context.Context, uc UserContext, id string, entity Document) (Document, error) {
	oid, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	doc := copyDoc(entity)
	delete(doc, "_id")
	res, err := s.c.UpdateOne(ctx, Document{"_id": oid}, bson.M{"$set": doc})
	if err != nil {
		return nil, s.writeErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.NewIDNotFound(id)
	}
	return s.findOneDoc(ctx, Document{"_id": oid}, id)
}

// Update partially updates every document matching queryObject. Zero
// matches fail with a generic NotFound; this is deliberately less specific
// than the id-targeted operations.
func (s *Service) Update(ctx context.Context, uc UserContext, queryObject Document, entity Document) ([]Document, error) {
	if err := s.validate(s.spec.PartialValidator, entity); err != nil {
		return nil, err
	}
	q, err := s.strategies.PrepareQuery(uc, queryObject, s.collection)
	if err != nil {
		return nil, err
	}

	doc := copyDoc(entity)
	stripAudit(doc)
	delete(doc, "_id")
	if s.spec.Auditable {
		stampUpdate(doc, uc, time.Now().UTC())
	}
	doc, err = s.strategies.PrepareEntity(uc, doc, s.collection, false)
	if err != nil {
		return nil, err
	}
	doc, err = s.hooks.OnBeforeUpdate(ctx, uc, doc)
	if err != nil {
		return nil, err
	}

	res, err := s.c.UpdateMany(ctx, q, bson.M{"$set": doc})
	if err != nil {
		return nil, s.writeErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.Newf(apperr.NotFound, "no %s matched the update query", s.plural)
	}

	updated, err := s.findDocs(ctx, q, nil)
	if err != nil {
		return nil, err
	}
	for i, d := range updated {
		d, err := s.hooks.OnAfterUpdate(ctx, uc, d)
		if err != nil {
			return nil, err
		}
		updated[i] = d
	}
	return updated, nil
}

// DeleteByID removes one document, running the delete hooks around the
// store call. The hooks receive the prepared query.
func (s *Service) DeleteByID(ctx context.Context, uc UserContext, id string) (*mongo.DeleteResult, error) {
	oid, err := s.parseID(id)
	if err != nil {
		return nil, err
	}
	q, err := s.strategies.PrepareQuery(uc, Document{"_id": oid}, s.collection)
	if err != nil {
		return nil, err
	}
	q, err = s.hooks.OnBeforeDelete(ctx, uc, q)
	if err != nil {
		return nil, err
	}
	res, err := s.c.DeleteOne(ctx, q)
	if err != nil {
		return nil, s.storeErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return nil, apperr.NewIDNotFound(id)
	}
	if _, err := s.hooks.OnAfterDelete(ctx, uc, q); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteMany removes every document matching queryObject.
func (s *Service) DeleteMany(ctx context.Context, uc UserContext, queryObject Document) (*mongo.DeleteResult, error) {
	q, err := s.strategies.PrepareQuery(uc, queryObject, s.collection)
	if err != nil {
		return nil, err
	}
	q, err = s.hooks.OnBeforeDelete(ctx, uc, q)
	if err != nil {
		return nil, err
	}
	res, err := s.c.DeleteMany(ctx, q)
	if err != nil {
		return nil, s.storeErr("delete", err)
	}
	if _, err := s.hooks.OnAfterDelete(ctx, uc, q); err != nil {
		return nil, err
	}
	return res, nil
}

// Find is the escape hatch for arbitrary store-level queries. Results
// still pass through the transform pipeline.
func (s *Service) Find(ctx context.Context, uc UserContext, queryObject Document, opts ...*options.FindOptions) ([]Document, error) {
	q, err := s.strategies.PrepareQuery(uc, queryObject, s.collection)
	if err != nil {
		return nil, err
	}
	return s.findDocs(ctx, q, opts)
}

// FindOne fetches the first match for an arbitrary store-level query.
func (s *Service) FindOne(ctx context.Context, uc UserContext, queryObject Document, opts ...*options.FindOneOptions) (Document, error) {
	q, err := s.strategies.PrepareQuery(uc, queryObject, s.collection)
	if err != nil {
		return nil, err
	}
	var doc Document
	err = s.c.FindOne(ctx, q, opts...).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.Newf(apperr.NotFound, "no %s matched the query", s.singular)
	}
	if err != nil {
		return nil, s.storeErr("find", err)
	}
	return s.transform(doc), nil
}

// --- internals ---

func (s *Service) parseID(id string) (primitive.ObjectID, error) {
	if !schema.IsObjectIDHex(id) {
		return primitive.NilObjectID, apperr.Newf(apperr.BadRequest, "%q is not a valid %s id", id, s.singular)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Newf(apperr.BadRequest, "%q is not a valid %s id", id, s.singular)
	}
	return oid, nil
}

// validate maps schema violations onto a Validation error, one entry per
// violated field. It always runs before any store mutation.
func (s *Service) validate(v *schema.Validator, doc Document) error {
	violations := v.Validate(doc)
	if len(violations) == 0 {
		return nil
	}
	fields := make([]apperr.FieldError, len(violations))
	for i, ve := range violations {
		fields[i] = apperr.FieldError{Message: ve.Message, Field: ve.Field}
	}
	return apperr.NewValidation(fields)
}

func (s *Service) afterUpdate(ctx context.Context, uc UserContext, q Document, id string) (Document, error) {
	updated, err := s.rawFindOne(ctx, q, id)
	if err != nil {
		return nil, err
	}
	updated, err = s.hooks.OnAfterUpdate(ctx, uc, updated)
	if err != nil {
		return nil, err
	}
	return s.transform(updated), nil
}

func (s *Service) rawFindOne(ctx context.Context, q Document, id string) (Document, error) {
	var doc Document
	err := s.c.FindOne(ctx, q).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewIDNotFound(id)
	}
	if err != nil {
		return nil, s.storeErr("find", err)
	}
	return doc, nil
}

func (s *Service) findOneDoc(ctx context.Context, q Document, id string) (Document, error) {
	doc, err := s.rawFindOne(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return s.transform(doc), nil
}

func (s *Service) findDocs(ctx context.Context, q Document, opts []*options.FindOptions) ([]Document, error) {
	cur, err := s.c.Find(ctx, q, opts...)
	if err != nil {
		return nil, s.storeErr("find", err)
	}
	defer cur.Close(ctx)
	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, s.storeErr("find", err)
	}
	return s.transformList(docs), nil
}

func (s *Service) transformList(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = s.transform(d)
	}
	return out
}

// writeErr normalizes store-level write failures: uniqueness violations
// surface as DuplicateKey, everything else as BadRequest.
func (s *Service) writeErr(err error) error {
	if wafflemongo.IsDup(err) {
		return apperr.Wrap(apperr.DuplicateKey, "a "+s.singular+" with these unique values already exists", err)
	}
	s.log.Error("store write failed", zap.String("collection", s.collection), zap.Error(err))
	return apperr.Wrap(apperr.BadRequest, "the "+s.singular+" could not be written", err)
}

func (s *Service) storeErr(op string, err error) error {
	s.log.Error("store operation failed",
		zap.String("collection", s.collection),
		zap.String("op", op),
		zap.Error(err))
	return apperr.Wrap(apperr.Server, "the "+s.plural+" store is unavailable", err)
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// tenantExclusions keeps the org id out of eq-filter id promotion.
func tenantExclusions() []string { return []string{"_orgId"} }
