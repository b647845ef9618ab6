package provider

import (
	"strconv"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// BuildQueries derives the directory queries for req. The result holds no two queries
// with the same Key.
func (p *Provider) BuildQueries(req external.Request) []external.Query {
	switch req.EntityType {
	case entity.TypeOrganization:
		return dedupe(p.organizationQueries(req))
	case entity.TypePerson:
		return dedupe(p.personQueries(req))
	default:
		return nil
	}
}

func (p *Provider) organizationQueries(req external.Request) []external.Query {
	// Already enriched by this provider.
	if v, ok := req.Property(OrgID); ok && strings.TrimSpace(v) != "" {
		return nil
	}

	known := priorOrganizations(req.Prior)

	var ids []string
	for _, v := range req.Identifiers {
		if strings.TrimSpace(v) != "" {
			ids = append(ids, v)
		}
	}

	var out []external.Query
	if len(ids) > 0 {
		for _, v := range ids {
			id, ok := ProfileID(v)
			if !ok || known.ids[id] {
				continue
			}
			out = append(out, p.query(req, external.KindIdentifier, id))
		}
		return out
	}

	for _, name := range NameVariants(req.Names) {
		if known.names[foldKey(name)] {
			continue
		}
		out = append(out, p.query(req, external.KindName, name))
	}
	return out
}

func (p *Provider) personQueries(req external.Request) []external.Query {
	known := priorPeople(req.Prior)

	values := append([]string(nil), req.Identifiers...)
	if v, ok := req.Property(PersonID); ok {
		values = append(values, v)
	}

	var out []external.Query
	for _, v := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			continue
		}
		id := strconv.FormatInt(n, 10)
		if known[id] {
			continue
		}
		out = append(out, p.query(req, external.KindIdentifier, id))
	}
	return out
}

func (p *Provider) query(req external.Request, kind external.QueryKind, value string) external.Query {
	return external.Query{
		ProviderID: ID,
		EntityType: req.EntityType,
		Kind:       kind,
		Value:      value,
		Context:    req.Context,
		Scope:      roleScope(req.Context),
		RequestID:  req.ID,
	}
}

// roleScope identifies the role a person query was reached through.
func roleScope(ctx any) string {
	role, ok := ctx.(*angellist.Role)
	if !ok || role == nil {
		return ""
	}
	return strconv.FormatInt(role.Startup.ID, 10) + "/" + strconv.FormatInt(role.ID, 10) + "/" + role.Role
}

type knownOrganizations struct {
	ids   map[string]bool
	names map[string]bool
}

func priorOrganizations(prior []external.Result) knownOrganizations {
	k := knownOrganizations{ids: map[string]bool{}, names: map[string]bool{}}
	for _, r := range prior {
		org, ok := r.(*OrganizationResult)
		if !ok || org == nil {
			continue
		}
		if org.Startup.ID > 0 {
			k.ids[strconv.FormatInt(org.Startup.ID, 10)] = true
		}
		if id, ok := ProfileID(org.Startup.AngelListURL); ok {
			k.ids[id] = true
		}
		if n := NormalizeName(org.Startup.Name); n != "" {
			k.names[foldKey(n)] = true
		}
	}
	return k
}

func priorPeople(prior []external.Result) map[string]bool {
	k := map[string]bool{}
	for _, r := range prior {
		person, ok := r.(*PersonResult)
		if !ok || person == nil {
			continue
		}
		if person.User.ID != 0 {
			k[strconv.FormatInt(person.User.ID, 10)] = true
		}
		if person.Role.Tagged != nil && person.Role.Tagged.ID != 0 {
			k[strconv.FormatInt(person.Role.Tagged.ID, 10)] = true
		}
	}
	return k
}

func dedupe(qs []external.Query) []external.Query {
	if len(qs) == 0 {
		return nil
	}
	seen := make(map[external.QueryKey]bool, len(qs))
	out := qs[:0]
	for _, q := range qs {
		if seen[q.Key()] {
			continue
		}
		seen[q.Key()] = true
		out = append(out, q)
	}
	return out
}
