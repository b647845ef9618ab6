package provider_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

type pageReply struct {
	page *angellist.RolesPage
	err  error
}

// fakeDirectory serves canned responses and records every call.
type fakeDirectory struct {
	mu sync.Mutex

	search    map[string][]angellist.SearchResult
	searchErr error
	startups  map[int64]*angellist.Startup
	pages     map[int]pageReply
	users     map[int64]*angellist.User

	calls []string
}

func (f *fakeDirectory) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDirectory) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDirectory) count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeDirectory) Search(_ context.Context, q string) ([]angellist.SearchResult, error) {
	f.record("search %s", q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[q], nil
}

func (f *fakeDirectory) Startup(_ context.Context, id int64) (*angellist.Startup, error) {
	f.record("startup %d", id)
	return f.startups[id], nil
}

func (f *fakeDirectory) StartupRoles(_ context.Context, id int64, page int) (*angellist.RolesPage, error) {
	f.record("roles %d %d", id, page)
	r, ok := f.pages[page]
	if !ok {
		return nil, nil
	}
	return r.page, r.err
}

func (f *fakeDirectory) User(_ context.Context, id int64) (*angellist.User, error) {
	f.record("user %d", id)
	return f.users[id], nil
}

type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses = append(s.pauses, d)
}

func (s *sleepRecorder) Pauses() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.pauses...)
}

func personRole(id, taggedID int64, title string) angellist.Role {
	return angellist.Role{
		ID:     id,
		Role:   title,
		Tagged: &angellist.Tagged{ID: taggedID, Type: "User", Name: fmt.Sprintf("Person %d", taggedID)},
		Startup: angellist.StartupRef{
			ID:   42,
			Name: "Acme",
		},
	}
}

func startupRole(id, taggedID int64) angellist.Role {
	return angellist.Role{
		ID:      id,
		Role:    "incubator",
		Tagged:  &angellist.Tagged{ID: taggedID, Type: "Startup", Name: "Incubator"},
		Startup: angellist.StartupRef{ID: 42, Name: "Acme"},
	}
}

func rolesPage(page, total int, roles ...angellist.Role) pageReply {
	return pageReply{page: &angellist.RolesPage{StartupRoles: roles, Total: total, Page: page, PerPage: 50}}
}
