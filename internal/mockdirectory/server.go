// Package mockdirectory serves an in-memory fake of the directory API endpoints used by
// the connector: search, startup profile, startup roles and user profile.
package mockdirectory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

// DefaultPerPage is the roles page size when a fixture does not set one.
const DefaultPerPage = 50

// Fixture is the directory content served by the mock.
type Fixture struct {
	Startups []angellist.Startup `json:"startups"`
	Users    []angellist.User    `json:"users"`
	// Roles maps a startup id to all of its roles, in page order.
	Roles   map[int64][]angellist.Role `json:"roles"`
	PerPage int                        `json:"per_page"`
}

// LoadFixture reads a JSON fixture file.
func LoadFixture(path string) (Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Call records a request made to the mock service.
type Call struct {
	Method string
	Path   string
	Page   int
	Token  string
	Query  string
}

// Server implements the fake directory.
type Server struct {
	mu       sync.Mutex
	startups map[int64]angellist.Startup
	users    map[int64]angellist.User
	roles    map[int64][]angellist.Role
	perPage  int

	tokens map[string]bool
	fail   map[string]int
	drop   map[string]bool
	calls  []Call
}

// New constructs a server around f.
func New(f Fixture) *Server {
	s := &Server{
		startups: make(map[int64]angellist.Startup, len(f.Startups)),
		users:    make(map[int64]angellist.User, len(f.Users)),
		roles:    make(map[int64][]angellist.Role, len(f.Roles)),
		perPage:  f.PerPage,
		fail:     make(map[string]int),
		drop:     make(map[string]bool),
	}
	if s.perPage <= 0 {
		s.perPage = DefaultPerPage
	}
	for _, st := range f.Startups {
		s.startups[st.ID] = st
	}
	for _, u := range f.Users {
		s.users[u.ID] = u
	}
	for id, rs := range f.Roles {
		s.roles[id] = rs
	}
	return s
}

// RequireTokens rejects requests whose access_token is not one of tokens.
// With no tokens, any access_token is accepted.
func (s *Server) RequireTokens(tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			if s.tokens == nil {
				s.tokens = make(map[string]bool)
			}
			s.tokens[t] = true
		}
	}
}

// FailPath makes requests to target answer with status. target is a URL path, optionally
// followed by "?page=N" to fail a single roles page.
func (s *Server) FailPath(target string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[target] = status
}

// DropPath makes requests to target close the connection without a response.
func (s *Server) DropPath(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop[target] = true
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /1/search", s.handleSearch)
	mux.HandleFunc("GET /1/startups/{id}", s.handleStartup)
	mux.HandleFunc("GET /1/startups/{id}/roles", s.handleRoles)
	mux.HandleFunc("GET /1/users/{id}", s.handleUser)
	return s.intercept(mux)
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Tokens returns the distinct access tokens seen so far, sorted.
func (s *Server) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.calls {
		if !seen[c.Token] {
			seen[c.Token] = true
			out = append(out, c.Token)
		}
	}
	sort.Strings(out)
	return out
}

// intercept records the call and applies auth, injected failures and dropped connections.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		token := r.URL.Query().Get("access_token")

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Page:   page,
			Token:  token,
			Query:  r.URL.Query().Get("query"),
		})
		allowed := s.tokens == nil || s.tokens[token]
		target := r.URL.Path
		if page > 0 {
			target += "?page=" + strconv.Itoa(page)
		}
		status, failing := s.fail[target]
		if !failing {
			status, failing = s.fail[r.URL.Path]
		}
		dropping := s.drop[target] || s.drop[r.URL.Path]
		s.mu.Unlock()

		if !allowed {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
			return
		}
		if dropping {
			hijackAndClose(w)
			return
		}
		if failing {
			writeError(w, status, "injected", http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	typ := r.URL.Query().Get("type")

	out := []angellist.SearchResult{}
	if query != "" && (typ == "" || strings.EqualFold(typ, "Startup")) {
		s.mu.Lock()
		for _, st := range s.startups {
			if matchesSearch(st, query) {
				out = append(out, angellist.SearchResult{
					ID:   st.ID,
					Name: st.Name,
					URL:  st.AngelListURL,
					Pic:  st.ThumbURL,
					Type: "Startup",
				})
			}
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, out)
}

// matchesSearch matches on name substring, exact id or profile URL slug.
func matchesSearch(st angellist.Startup, query string) bool {
	if strings.Contains(strings.ToLower(st.Name), query) || strconv.FormatInt(st.ID, 10) == query {
		return true
	}
	u := strings.ToLower(strings.TrimRight(st.AngelListURL, "/"))
	return u != "" && strings.HasSuffix(u, "/"+query)
}

func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	st, found := s.startups[id]
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "startup not found")
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid page")
			return
		}
		page = p
	}

	s.mu.Lock()
	_, known := s.startups[id]
	all := s.roles[id]
	perPage := s.perPage
	s.mu.Unlock()
	if !known {
		writeError(w, http.StatusNotFound, "not_found", "startup not found")
		return
	}

	lastPage := (len(all) + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}
	roles := []angellist.Role{}
	if start := (page - 1) * perPage; start < len(all) {
		end := min(start+perPage, len(all))
		roles = all[start:end]
	}
	writeJSON(w, angellist.RolesPage{
		StartupRoles: roles,
		Total:        len(all),
		PerPage:      perPage,
		Page:         page,
		LastPage:     lastPage,
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	u, found := s.users[id]
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, u)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"type": typ, "message": msg},
	})
}

func hijackAndClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "connection drop unsupported", http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}
