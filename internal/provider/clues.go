package provider

import (
	"strconv"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// generic role title the directory assigns when nothing more specific is known
const genericRole = "employee"

// BuildClues turns one result into exactly one clue plus its follow-up work:
// a person request per role for organizations, and a preview image when one is linked.
func (p *Provider) BuildClues(q external.Query, r external.Result, _ external.Request) external.Outcome {
	switch res := r.(type) {
	case *OrganizationResult:
		if res == nil {
			return external.Outcome{}
		}
		return p.organizationOutcome(res)
	case *PersonResult:
		if res == nil {
			return external.Outcome{}
		}
		return p.personOutcome(res)
	default:
		return external.Outcome{}
	}
}

func (p *Provider) organizationOutcome(res *OrganizationResult) external.Outcome {
	md := organizationMetadata(&res.Startup)
	out := external.Outcome{
		Clues: []entity.Clue{{Code: md.OriginCode, ProviderID: ID, Data: md}},
	}
	if img, ok := p.PrimaryPreviewImage(res); ok {
		out.Images = append(out.Images, *img)
	}
	for i := range res.Roles {
		if sub, ok := personRequest(res.Roles[i]); ok {
			out.SubRequests = append(out.SubRequests, sub)
		}
	}
	return out
}

// personRequest keys the follow-up search by the tagged person's numeric id.
func personRequest(role angellist.Role) (external.Request, bool) {
	t := role.Tagged
	if !t.IsPerson() || t.ID <= 0 {
		return external.Request{}, false
	}
	id := strconv.FormatInt(t.ID, 10)

	req := external.NewRequest(entity.TypePerson)
	req.Identifiers = []string{id}
	if name := strings.TrimSpace(t.Name); name != "" {
		req.Names = []string{name}
	}
	req.Properties[PersonID] = id
	if u := strings.TrimSpace(t.AngelListURL); u != "" {
		req.Properties[PersonAngellistURL] = u
	}
	if name := strings.TrimSpace(t.Name); name != "" {
		req.Properties[PersonName] = name
	}
	req.Context = &role
	return req, true
}

func (p *Provider) personOutcome(res *PersonResult) external.Outcome {
	md := personMetadata(&res.User)

	role := res.Role
	md.Set(PersonOrganization, role.Startup.Name)
	if role.Role != genericRole {
		md.SetExact(PersonRole, role.Role)
	}
	if role.Startup.ID > 0 {
		md.OutgoingEdges = append(md.OutgoingEdges, entity.Edge{
			From: entity.Reference{Code: md.OriginCode},
			To: entity.Reference{
				Code: organizationCode(role.Startup.ID),
				Name: strings.TrimSpace(role.Startup.Name),
			},
			Type: entity.EdgePartOf,
		})
	}

	out := external.Outcome{
		Clues: []entity.Clue{{Code: md.OriginCode, ProviderID: ID, Data: md}},
	}
	if img, ok := p.PrimaryPreviewImage(res); ok {
		out.Images = append(out.Images, *img)
	}
	return out
}
