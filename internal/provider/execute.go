package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/redact"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// ExecuteSearch runs q against the directory.
//
// Organization queries yield one *OrganizationResult per surviving startup profile; person
// queries yield at most one *PersonResult. Errors from the search, profile and user calls
// abort the query with no partial results. Roles failures do not.
func (p *Provider) ExecuteSearch(ctx context.Context, q external.Query) ([]external.Result, error) {
	switch q.EntityType {
	case entity.TypeOrganization:
		return p.executeOrganization(ctx, q)
	case entity.TypePerson:
		return p.executePerson(ctx, q)
	default:
		return nil, fmt.Errorf("provider: cannot execute query for entity type %q", q.EntityType)
	}
}

func (p *Provider) executeOrganization(ctx context.Context, q external.Query) ([]external.Result, error) {
	value := strings.TrimSpace(q.Value)
	if value == "" {
		return nil, nil
	}

	hits, err := p.dir.Search(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("search %s %q: %w", q.Kind, value, err)
	}
	if q.Kind == external.KindIdentifier {
		hits = matchIdentifier(hits, value)
	}

	var out []external.Result
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		profile, err := p.dir.Startup(ctx, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("startup %d: %w", hit.ID, err)
		}
		if profile == nil {
			continue
		}
		// Name matches on community profiles are too loose to trust.
		if q.Kind == external.KindName && profile.CommunityProfile {
			continue
		}

		res := &OrganizationResult{Search: hit, Startup: *profile}
		if !p.skipRoles {
			roles, err := p.FetchRoles(ctx, hit.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				p.log.Warn("provider: roles unavailable, reporting organization without roles",
					zap.Int64("startup_id", hit.ID),
					zap.String("error", redact.Error(err)),
				)
				res.RolesErr = err
			} else {
				res.Roles = roles
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// matchIdentifier keeps hits whose id, name or profile URL id equals value.
func matchIdentifier(hits []angellist.SearchResult, value string) []angellist.SearchResult {
	var out []angellist.SearchResult
	for _, h := range hits {
		switch {
		case strconv.FormatInt(h.ID, 10) == value:
		case strings.EqualFold(strings.TrimSpace(h.Name), value):
		default:
			id, ok := ProfileID(h.URL)
			if !ok || !strings.EqualFold(id, value) {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

func (p *Provider) executePerson(ctx context.Context, q external.Query) ([]external.Result, error) {
	role, ok := q.Context.(*angellist.Role)
	if !ok || role == nil {
		return nil, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(q.Value), 10, 64)
	if err != nil || id <= 0 {
		return nil, nil
	}

	user, err := p.dir.User(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	if user == nil {
		return nil, nil
	}
	return []external.Result{&PersonResult{User: *user, Role: *role}}, nil
}
