package provider

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/redact"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// FetchRoles walks the roles listing of startup id page by page and keeps roles held by people.
//
// The page bound comes from the first successful page and is not revised afterwards.
// Absent pages are skipped. Failed pages are collected: if any page succeeded the roles
// gathered so far are returned with a nil error, otherwise the collected errors are returned
// (a single error for one failed page, a multierr aggregate for several). Cancellation
// always wins and returns ctx.Err().
func (p *Provider) FetchRoles(ctx context.Context, id int64) ([]angellist.Role, error) {
	var (
		roles     []angellist.Role
		errs      error
		succeeded bool
		pinned    bool
		maxPages  = 1
	)

	for page := 1; page <= maxPages; page++ {
		if page > 1 && p.pageDelay > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p.sleep(p.pageDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rp, err := p.dir.StartupRoles(ctx, id, page)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.log.Warn("provider: roles page failed",
				zap.Int64("startup_id", id),
				zap.Int("page", page),
				zap.String("error", redact.Error(err)),
			)
			errs = multierr.Append(errs, fmt.Errorf("roles page %d: %w", page, err))
		case rp == nil:
			// Absent page.
		default:
			succeeded = true
			if !pinned {
				pinned = true
				if n := rp.PageCount(); n > maxPages {
					maxPages = n
				}
			}
			for _, r := range rp.StartupRoles {
				if r.Tagged.IsPerson() {
					roles = append(roles, r)
				}
			}
		}
	}

	if !succeeded && errs != nil {
		return nil, errs
	}
	return roles, nil
}
