// Package input reads enrichment requests from CSV tables and JSON job payloads.
package input

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// Column names. Only entity_type is required.
const (
	ColEntityType      = "entity_type"
	ColName            = "name"
	ColAliases         = "aliases"
	ColIdentifiers     = "identifiers"
	ColRoleStartupID   = "role_startup_id"
	ColRoleStartupName = "role_startup_name"
	ColRoleTitle       = "role_title"
)

// listSep separates values inside the aliases and identifiers cells.
const listSep = ";"

// Row is one request as supplied by a caller.
type Row struct {
	EntityType  string   `json:"entity_type"`
	Name        string   `json:"name,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
	// Role is the organization role a person is searched through.
	Role *RoleRef `json:"role,omitempty"`
}

type RoleRef struct {
	StartupID   int64  `json:"startup_id,omitempty"`
	StartupName string `json:"startup_name,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Request converts the row. Only organization and person rows are accepted.
func (r Row) Request() (external.Request, error) {
	t, err := entity.ParseType(r.EntityType)
	if err != nil || (t != entity.TypeOrganization && t != entity.TypePerson) {
		return external.Request{}, fmt.Errorf("unsupported entity type %q", r.EntityType)
	}

	req := external.NewRequest(t)
	if name := strings.TrimSpace(r.Name); name != "" {
		req.Names = append(req.Names, name)
	}
	req.Names = append(req.Names, trimAll(r.Aliases)...)
	req.Identifiers = trimAll(r.Identifiers)

	if t == entity.TypePerson && r.Role != nil {
		if r.Role.StartupID < 0 {
			return external.Request{}, fmt.Errorf("invalid role startup id %d", r.Role.StartupID)
		}
		req.Context = &angellist.Role{
			Role: strings.TrimSpace(r.Role.Title),
			Startup: angellist.StartupRef{
				ID:   r.Role.StartupID,
				Name: strings.TrimSpace(r.Role.StartupName),
			},
		}
	}
	return req, nil
}

// JobPayload is the query body of a compute-module enrichment job.
type JobPayload struct {
	Requests []Row `json:"requests"`
}

// ReadRequestsJSON decodes a JobPayload. Invalid rows are reported by 0-based index.
func ReadRequestsJSON(r io.Reader) ([]external.Request, error) {
	var p JobPayload
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode job payload: %w", err)
	}

	var (
		out  []external.Request
		errs []error
	)
	for i, row := range p.Requests {
		req, err := row.Request()
		if err != nil {
			errs = append(errs, fmt.Errorf("request %d: %w", i, err))
			continue
		}
		out = append(out, req)
	}
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}
	return out, nil
}

// ReadRequestsCSV parses one request per row. Rows with an unknown entity type or a
// malformed role_startup_id are rejected with their 1-based row number (header is row 1).
func ReadRequestsCSV(r io.Reader) ([]external.Request, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := idx[ColEntityType]; !ok {
		return nil, fmt.Errorf("missing required column %q", ColEntityType)
	}

	cell := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		out  []external.Request
		errs []error
	)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if isBlank(rec) {
			continue
		}

		in := Row{
			EntityType:  cell(rec, ColEntityType),
			Name:        cell(rec, ColName),
			Aliases:     splitList(cell(rec, ColAliases)),
			Identifiers: splitList(cell(rec, ColIdentifiers)),
		}
		role, err := roleRef(rec, cell)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		in.Role = role

		req, err := in.Request()
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		out = append(out, req)
	}
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}
	return out, nil
}

func roleRef(rec []string, cell func([]string, string) string) (*RoleRef, error) {
	rawID := cell(rec, ColRoleStartupID)
	ref := &RoleRef{StartupName: cell(rec, ColRoleStartupName), Title: cell(rec, ColRoleTitle)}
	if rawID == "" && ref.StartupName == "" && ref.Title == "" {
		return nil, nil
	}
	if rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid %s %q", ColRoleStartupID, rawID)
		}
		ref.StartupID = id
	}
	return ref, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return trimAll(strings.Split(s, listSep))
}

func trimAll(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
