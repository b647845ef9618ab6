package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/provider"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

func values(qs []external.Query) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Value)
	}
	return out
}

func TestBuildQueries_OrganizationAlreadyEnriched(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	req := external.NewRequest(entity.TypeOrganization)
	req.Names = []string{"Acme"}
	req.Properties[provider.OrgID] = "42"

	assert.Empty(t, p.BuildQueries(req))
}

func TestBuildQueries_OrganizationProfileURL(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	req := external.NewRequest(entity.TypeOrganization)
	req.Identifiers = []string{"https://angel.co/Acme", "angel.co/acme"}
	req.Names = []string{"Acme Inc"}

	qs := p.BuildQueries(req)
	require.Len(t, qs, 1)
	assert.Equal(t, external.KindIdentifier, qs[0].Kind)
	assert.Equal(t, "acme", qs[0].Value)
	assert.Equal(t, provider.ID, qs[0].ProviderID)
	assert.Equal(t, req.ID, qs[0].RequestID)
}

func TestBuildQueries_OrganizationUnusableIdentifiersSuppressNames(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	req := external.NewRequest(entity.TypeOrganization)
	req.Identifiers = []string{"abc", "https://example.com/acme"}
	req.Names = []string{"Acme"}

	assert.Empty(t, p.BuildQueries(req))
}

func TestBuildQueries_OrganizationNameVariants(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	req := external.NewRequest(entity.TypeOrganization)
	req.Names = []string{"Acme  Inc.", "acme inc.", "x", "12345", "ops@acme.com", " "}

	qs := p.BuildQueries(req)
	assert.ElementsMatch(t, []string{"Acme Inc.", "Acme"}, values(qs))
	for _, q := range qs {
		assert.Equal(t, external.KindName, q.Kind)
	}
}

func TestBuildQueries_OrganizationExcludesPriorResults(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	prior := []external.Result{&provider.OrganizationResult{
		Startup: angellist.Startup{ID: 42, Name: "Acme", AngelListURL: "https://angel.co/acme"},
	}}

	byID := external.NewRequest(entity.TypeOrganization)
	byID.Identifiers = []string{"https://angel.co/ACME", "https://wellfound.com/company/other", "42"}
	byID.Prior = prior
	assert.Equal(t, []string{"other"}, values(p.BuildQueries(byID)))

	byName := external.NewRequest(entity.TypeOrganization)
	byName.Names = []string{"Acme Inc."}
	byName.Prior = prior
	assert.Equal(t, []string{"Acme Inc."}, values(p.BuildQueries(byName)))
}

func TestBuildQueries_PersonNumericOnly(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	role := personRole(1, 12, "founder")

	req := external.NewRequest(entity.TypePerson)
	req.Identifiers = []string{"abc"}
	assert.Empty(t, p.BuildQueries(req))

	req.Identifiers = []string{"12", " 012 ", "abc"}
	req.Properties[provider.PersonID] = "12"
	req.Context = &role
	qs := p.BuildQueries(req)
	require.Len(t, qs, 1)
	assert.Equal(t, "12", qs[0].Value)
	assert.Same(t, &role, qs[0].Context.(*angellist.Role))
}

func TestBuildQueries_PersonScopedByRole(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	founder := personRole(1, 12, "founder")
	advisor := personRole(2, 12, "advisor")

	scope := func(role *angellist.Role) external.Query {
		req := external.NewRequest(entity.TypePerson)
		req.Identifiers = []string{"12"}
		req.Context = role
		qs := p.BuildQueries(req)
		require.Len(t, qs, 1)
		return qs[0]
	}
	a, b := scope(&founder), scope(&advisor)
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Scope, b.Scope)
	assert.Empty(t, scope(nil).Scope)
}

func TestBuildQueries_PersonExcludesPriorResults(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	req := external.NewRequest(entity.TypePerson)
	req.Identifiers = []string{"12", "13"}
	req.Prior = []external.Result{&provider.PersonResult{
		User: angellist.User{ID: 12},
		Role: personRole(1, 12, "founder"),
	}}

	assert.Equal(t, []string{"13"}, values(p.BuildQueries(req)))
}

func TestBuildQueries_OtherEntityTypes(t *testing.T) {
	t.Parallel()

	p := provider.New(&fakeDirectory{}, provider.Options{})
	assert.False(t, p.Accepts(entity.TypeTag))
	assert.Empty(t, p.BuildQueries(external.NewRequest(entity.TypeTag)))
}
