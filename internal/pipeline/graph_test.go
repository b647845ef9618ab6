package pipeline_test

import (
	"context"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/angellist-enrichment-connector/internal/credentials"
	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/mockdirectory"
	"github.com/palantir/angellist-enrichment-connector/internal/pipeline"
	"github.com/palantir/angellist-enrichment-connector/internal/provider"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

func sharedPersonFixture() mockdirectory.Fixture {
	role := func(id, startupID int64, startupName, title string) angellist.Role {
		return angellist.Role{
			ID:      id,
			Role:    title,
			Tagged:  &angellist.Tagged{ID: 99, Type: "User", Name: "Dana"},
			Startup: angellist.StartupRef{ID: startupID, Name: startupName},
		}
	}
	return mockdirectory.Fixture{
		Startups: []angellist.Startup{
			{ID: 1, Name: "Acme", AngelListURL: "https://angel.co/acme"},
			{ID: 2, Name: "Beta", AngelListURL: "https://angel.co/beta"},
		},
		Users: []angellist.User{{ID: 99, Name: "Dana"}},
		Roles: map[int64][]angellist.Role{
			1: {role(11, 1, "Acme", "founder"), role(12, 1, "Acme", "advisor")},
			2: {role(21, 2, "Beta", "cto")},
		},
	}
}

func TestRun_PersonReachedThroughSeveralRolesKeepsEveryEdge(t *testing.T) {
	dir := mockdirectory.New(sharedPersonFixture())
	ts := httptest.NewServer(dir.Handler())
	t.Cleanup(ts.Close)

	rot, err := credentials.NewRotator([]string{"t1"})
	require.NoError(t, err)
	client, err := angellist.NewClient(ts.URL, rot, angellist.Options{})
	require.NoError(t, err)
	p := provider.New(client, provider.Options{PageDelay: -1})

	acme := external.NewRequest(entity.TypeOrganization)
	acme.Identifiers = []string{"https://angel.co/acme"}
	beta := external.NewRequest(entity.TypeOrganization)
	beta.Identifiers = []string{"https://angel.co/beta"}

	var c collector
	stats, err := pipeline.Run(context.Background(), []external.Provider{p},
		[]external.Request{acme, beta},
		pipeline.Options{Workers: 2, MaxDepth: 1}, c.emit, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.DuplicateQueries)
	assert.Zero(t, stats.Failed)

	var edges, titles []string
	for _, cl := range c.clues {
		if cl.Data.EntityType != entity.TypePerson {
			continue
		}
		assert.Equal(t, "/Person#angelList:99", cl.Code.String())
		require.Len(t, cl.Data.OutgoingEdges, 1)
		e := cl.Data.OutgoingEdges[0]
		assert.Equal(t, entity.EdgePartOf, e.Type)
		edges = append(edges, e.To.Code.String())
		titles = append(titles, cl.Data.Properties[provider.PersonRole])
	}
	sort.Strings(edges)
	sort.Strings(titles)
	assert.Equal(t, []string{
		"/Organization#angelList:1",
		"/Organization#angelList:1",
		"/Organization#angelList:2",
	}, edges)
	assert.Equal(t, []string{"advisor", "cto", "founder"}, titles)

	userCalls := 0
	for _, call := range dir.Calls() {
		if call.Path == "/1/users/99" {
			userCalls++
		}
	}
	assert.Equal(t, 3, userCalls)
}
