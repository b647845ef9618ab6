// Package external defines the boundary between the host pipeline and enrichment providers.
package external

import (
	"context"

	"github.com/google/uuid"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
)

// QueryKind distinguishes lookups by directory identifier from free-text name searches.
type QueryKind string

const (
	KindIdentifier QueryKind = "identifier"
	KindName       QueryKind = "name"
)

// Request is a partially known entity to enrich. Providers must not mutate it.
type Request struct {
	ID         uuid.UUID
	EntityType entity.Type
	// Identifiers holds profile ids or profile URLs.
	Identifiers []string
	// Names holds the name, display name and aliases.
	Names []string
	// Properties are vocabulary properties already known for the entity.
	Properties map[string]string
	// Prior holds results previously obtained from the same provider.
	Prior []Result
	// Context is provider-specific query input carried from a parent result.
	Context any
	// Depth is 0 for input rows and grows by one per follow-up level.
	Depth int
}

// NewRequest returns a request with a fresh id.
func NewRequest(t entity.Type) Request {
	return Request{ID: uuid.New(), EntityType: t, Properties: map[string]string{}}
}

// Property returns a known property value.
func (r Request) Property(key string) (string, bool) {
	if r.Properties == nil {
		return "", false
	}
	v, ok := r.Properties[key]
	return v, ok
}

// Query is one search a provider will execute.
type Query struct {
	ProviderID string
	EntityType entity.Type
	Kind       QueryKind
	Value      string
	Context    any
	// Scope separates queries that share a Key but carry different Context, such as
	// one person reached through two roles. The host deduplicates on (Key, Scope).
	Scope string
	// RequestID links the query back to the request that produced it.
	RequestID uuid.UUID
}

// QueryKey is the identity of a query within a provider.
type QueryKey struct {
	EntityType entity.Type
	Kind       QueryKind
	Value      string
}

// Key returns the identity used for deduplication.
func (q Query) Key() QueryKey {
	return QueryKey{EntityType: q.EntityType, Kind: q.Kind, Value: q.Value}
}

// Result is an opaque provider result.
type Result interface {
	// EntityType is the type of entity the result describes.
	EntityType() entity.Type
}

// ImageRef asks the host to fetch a preview image for an entity.
type ImageRef struct {
	URL   string      `json:"url"`
	Owner entity.Code `json:"owner"`
}

// Outcome is everything produced from one result: clues plus follow-up work.
type Outcome struct {
	Clues       []entity.Clue
	SubRequests []Request
	Images      []ImageRef
}

// Provider is the capability set the host pipeline drives.
type Provider interface {
	ID() string
	Accepts(t entity.Type) bool
	BuildQueries(req Request) []Query
	ExecuteSearch(ctx context.Context, q Query) ([]Result, error)
	BuildClues(q Query, r Result, req Request) Outcome
	PrimaryMetadata(r Result) (*entity.Metadata, bool)
	PrimaryPreviewImage(r Result) (*ImageRef, bool)
}
