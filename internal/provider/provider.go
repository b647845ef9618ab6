// Package provider enriches organizations and people from the AngelList directory.
//
// It turns partially known entities into directory queries, executes them against the
// API (search, profile, paginated roles, user profile) and assembles the responses into
// clues plus follow-up person requests for every role found on an organization.
package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

const (
	// ID identifies this provider on clues and queries.
	ID = "angellist"
	// Origin is the code namespace for directory ids.
	Origin = "angelList"

	DefaultPageDelay = time.Second
)

// Directory is the subset of the API client the provider calls.
// *angellist.Client satisfies it.
type Directory interface {
	Search(ctx context.Context, query string) ([]angellist.SearchResult, error)
	Startup(ctx context.Context, id int64) (*angellist.Startup, error)
	StartupRoles(ctx context.Context, id int64, page int) (*angellist.RolesPage, error)
	User(ctx context.Context, id int64) (*angellist.User, error)
}

// Options configures a Provider.
type Options struct {
	// SkipRoles disables role retrieval (and so person follow-ups) for organizations.
	SkipRoles bool
	// PageDelay is the pause before every roles page after the first. Zero means DefaultPageDelay;
	// negative disables the pause.
	PageDelay time.Duration
	// Sleep replaces time.Sleep for the page pause (tests).
	Sleep  func(time.Duration)
	Logger *zap.Logger
}

// Provider implements external.Provider for the AngelList directory.
type Provider struct {
	dir       Directory
	skipRoles bool
	pageDelay time.Duration
	sleep     func(time.Duration)
	log       *zap.Logger
}

var _ external.Provider = (*Provider)(nil)

// New returns a provider calling dir.
func New(dir Directory, opts Options) *Provider {
	delay := opts.PageDelay
	if delay == 0 {
		delay = DefaultPageDelay
	}
	if delay < 0 {
		delay = 0
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		dir:       dir,
		skipRoles: opts.SkipRoles,
		pageDelay: delay,
		sleep:     sleep,
		log:       log.With(zap.String("provider", ID)),
	}
}

func (p *Provider) ID() string { return ID }

// Accepts reports whether the provider handles t.
func (p *Provider) Accepts(t entity.Type) bool {
	return t == entity.TypeOrganization || t == entity.TypePerson
}

// OrganizationResult is one surviving startup profile from an organization query.
type OrganizationResult struct {
	Search  angellist.SearchResult
	Startup angellist.Startup
	// Roles holds person roles only. Empty when roles are disabled or RolesErr is set.
	Roles []angellist.Role
	// RolesErr records why roles could not be retrieved; the organization is still reported.
	RolesErr error
}

func (*OrganizationResult) EntityType() entity.Type { return entity.TypeOrganization }

// PersonResult is a user profile reached through a role.
type PersonResult struct {
	User angellist.User
	Role angellist.Role
}

func (*PersonResult) EntityType() entity.Type { return entity.TypePerson }
