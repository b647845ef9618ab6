package provider_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/angellist-enrichment-connector/internal/provider"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

func TestFetchRoles_WalksAllPagesWithPacing(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: rolesPage(1, 3, personRole(1, 101, "founder"), startupRole(2, 900)),
		2: rolesPage(2, 3, personRole(3, 102, "employee")),
		3: rolesPage(3, 3, personRole(4, 103, "advisor")),
	}}
	sleeps := &sleepRecorder{}
	p := provider.New(dir, provider.Options{Sleep: sleeps.Sleep})

	roles, err := p.FetchRoles(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 3, dir.count("roles "))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps.Pauses())

	var tagged []int64
	for _, r := range roles {
		tagged = append(tagged, r.Tagged.ID)
	}
	assert.Equal(t, []int64{101, 102, 103}, tagged, "non-person roles are dropped")
}

func TestFetchRoles_PartialFailureReturnsSuccessfulPages(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: rolesPage(1, 3, personRole(1, 101, "founder")),
		2: {err: &angellist.TransportError{Op: "startupRoles", Err: errors.New("connection reset")}},
		3: rolesPage(3, 3, personRole(3, 103, "advisor")),
	}}
	p := provider.New(dir, provider.Options{PageDelay: -1})

	roles, err := p.FetchRoles(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, int64(101), roles[0].Tagged.ID)
	assert.Equal(t, int64(103), roles[1].Tagged.ID)
}

func TestFetchRoles_TotalFailureSurfacesError(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: {err: &angellist.HTTPError{Op: "startupRoles", StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}},
	}}
	p := provider.New(dir, provider.Options{PageDelay: -1})

	roles, err := p.FetchRoles(context.Background(), 42)
	require.Error(t, err)
	assert.Empty(t, roles)
	assert.True(t, angellist.IsStatus(err, http.StatusInternalServerError))
}

func TestFetchRoles_PageBoundPinnedFromFirstSuccess(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: rolesPage(1, 2, personRole(1, 101, "founder")),
		2: rolesPage(2, 9, personRole(2, 102, "founder")),
		3: rolesPage(3, 9, personRole(3, 103, "founder")),
	}}
	p := provider.New(dir, provider.Options{PageDelay: -1})

	roles, err := p.FetchRoles(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 2, dir.count("roles "))
}

func TestFetchRoles_PrefersLastPage(t *testing.T) {
	t.Parallel()

	first := rolesPage(1, 120, personRole(1, 101, "founder"))
	first.page.LastPage = 2
	dir := &fakeDirectory{pages: map[int]pageReply{
		1: first,
		2: rolesPage(2, 120, personRole(2, 102, "founder")),
	}}
	p := provider.New(dir, provider.Options{PageDelay: -1})

	_, err := p.FetchRoles(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.count("roles "))
}

func TestFetchRoles_AbsentPageIsSkipped(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: rolesPage(1, 3, personRole(1, 101, "founder")),
		// page 2 missing -> absent
		3: rolesPage(3, 3, personRole(3, 103, "founder")),
	}}
	p := provider.New(dir, provider.Options{PageDelay: -1})

	roles, err := p.FetchRoles(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 3, dir.count("roles "))
}

func TestFetchRoles_CancellationStopsBeforeNextPage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := &fakeDirectory{pages: map[int]pageReply{
		1: rolesPage(1, 3, personRole(1, 101, "founder")),
		2: rolesPage(2, 3, personRole(2, 102, "founder")),
		3: rolesPage(3, 3, personRole(3, 103, "founder")),
	}}
	// Cancel while pacing before page 2.
	p := provider.New(dir, provider.Options{Sleep: func(time.Duration) { cancel() }})

	roles, err := p.FetchRoles(ctx, 42)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, roles)
	assert.Equal(t, 1, dir.count("roles "))
}
