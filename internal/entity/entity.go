// Package entity holds the graph model emitted to the identity-resolution pipeline:
// entity codes, metadata, tags, edges and clues.
package entity

import (
	"fmt"
	"strings"
)

// Type is the kind of entity a clue or code describes.
type Type string

const (
	TypeOrganization Type = "Organization"
	TypePerson       Type = "Person"
	TypeTag          Type = "Tag"
)

// ParseType accepts the canonical names case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "organization", "organisation", "company":
		return TypeOrganization, nil
	case "person", "user":
		return TypePerson, nil
	case "tag":
		return TypeTag, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// Metadata is the property-level description of one entity.
type Metadata struct {
	EntityType    Type              `json:"entity_type"`
	Name          string            `json:"name,omitempty"`
	Description   string            `json:"description,omitempty"`
	OriginCode    Code              `json:"origin_code"`
	Codes         []Code            `json:"codes,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
	Tags          []Tag             `json:"tags,omitempty"`
	OutgoingEdges []Edge            `json:"outgoing_edges,omitempty"`
}

// NewMetadata returns metadata with its origin code also registered in Codes.
func NewMetadata(entityType Type, code Code) Metadata {
	return Metadata{
		EntityType: entityType,
		OriginCode: code,
		Codes:      []Code{code},
		Properties: make(map[string]string),
	}
}

// Set stores a property, skipping blank values so absent source fields stay absent.
func (m *Metadata) Set(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if m.Properties == nil {
		m.Properties = make(map[string]string)
	}
	m.Properties[key] = value
}

// SetExact stores value unchanged, skipping blank values.
func (m *Metadata) SetExact(key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if m.Properties == nil {
		m.Properties = make(map[string]string)
	}
	m.Properties[key] = value
}

// Tag is a labelled classification attached to an entity.
type Tag struct {
	Name string `json:"name"`
	Code Code   `json:"code"`
}

// EdgeType names the relationship carried by an Edge.
type EdgeType string

const (
	EdgePartOf EdgeType = "PartOf"
)

// Reference points at an entity by code, optionally with a display name.
type Reference struct {
	Code Code   `json:"code"`
	Name string `json:"name,omitempty"`
}

// Edge is a directed relationship between two entities.
type Edge struct {
	From Reference `json:"from"`
	To   Reference `json:"to"`
	Type EdgeType  `json:"type"`
}

// Clue is the unit handed to the downstream merge pipeline.
type Clue struct {
	Code       Code     `json:"code"`
	ProviderID string   `json:"provider_id"`
	Data       Metadata `json:"data"`
}
