// Package mockfoundry implements the slice of the Foundry dataset and stream-proxy APIs the
// connector uses: branch lookup, readTable as CSV, stream record reads and JSON record publish.
package mockfoundry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Call records a request made to the mock service.
type Call struct {
	Method string
	Path   string
}

// Server is an in-memory Foundry stand-in.
type Server struct {
	inputDir string

	mu      sync.Mutex
	calls   []Call
	tables  map[string][]byte
	streams map[string][]map[string]any

	expectedAuthorization string

	// publishFailures answers the next N publishes with publishStatus.
	publishFailures int
	publishStatus   int
}

// New constructs a mock. inputDir, when set, serves <rid>.csv files for unknown tables.
func New(inputDir string) *Server {
	return &Server{
		inputDir: inputDir,
		tables:   make(map[string][]byte),
		streams:  make(map[string][]map[string]any),
	}
}

// RequireBearerToken enforces an Authorization header matching token; empty disables the check.
func (s *Server) RequireBearerToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + token
}

// PutTable sets the CSV content served for a dataset.
func (s *Server) PutTable(rid string, csv []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[rid] = append([]byte(nil), csv...)
}

// CreateStream registers rid as a stream so probes succeed and publishes are accepted.
func (s *Server) CreateStream(rid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streams[rid]; !ok {
		s.streams[rid] = nil
	}
}

// FailNextPublishes answers the next n publishes with status.
func (s *Server) FailNextPublishes(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishFailures = n
	s.publishStatus = status
}

// Records returns a snapshot of the records published to a stream.
func (s *Server) Records(rid string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.streams[rid]))
	copy(out, s.streams[rid])
	return out
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Handler serves the API gateway under /api and stream-proxy under /stream-proxy/api.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/datasets/{rid}/branches/{branch}", s.handleBranch)
	mux.HandleFunc("GET /api/v2/datasets/{rid}/readTable", s.handleReadTable)
	mux.HandleFunc("GET /stream-proxy/api/streams/{rid}/branches/{branch}/records", s.handleRecords)
	mux.HandleFunc("POST /stream-proxy/api/streams/{rid}/branches/{branch}/jsonRecord", s.handlePublish)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})
		expected := s.expectedAuthorization
		s.mu.Unlock()

		if expected != "" && r.Header.Get("Authorization") != expected {
			writeConjureError(w, http.StatusUnauthorized, "Default:Unauthorized", "UNAUTHORIZED")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *Server) handleBranch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"name":           r.PathValue("branch"),
		"transactionRid": "ri.foundry.main.transaction." + r.PathValue("rid"),
	})
}

func (s *Server) handleReadTable(w http.ResponseWriter, r *http.Request) {
	rid := r.PathValue("rid")
	s.mu.Lock()
	b, ok := s.tables[rid]
	s.mu.Unlock()

	if !ok && s.inputDir != "" && !strings.ContainsAny(rid, `/\`) {
		var err error
		if b, err = os.ReadFile(filepath.Join(s.inputDir, rid+".csv")); err == nil {
			ok = true
		}
	}
	if !ok {
		writeConjureError(w, http.StatusNotFound, "Datasets:DatasetNotFound", "NOT_FOUND")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write(b)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	recs, ok := s.streams[r.PathValue("rid")]
	out := append([]map[string]any{}, recs...)
	s.mu.Unlock()
	if !ok {
		writeConjureError(w, http.StatusNotFound, "Streams:StreamNotFound", "NOT_FOUND")
		return
	}
	writeJSON(w, map[string]any{"values": out})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	rid := r.PathValue("rid")
	b, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		writeConjureError(w, http.StatusBadRequest, "Streams:InvalidRecord", "INVALID_ARGUMENT")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishFailures > 0 {
		s.publishFailures--
		http.Error(w, fmt.Sprintf("injected %d", s.publishStatus), s.publishStatus)
		return
	}
	if _, ok := s.streams[rid]; !ok {
		writeConjureError(w, http.StatusNotFound, "Streams:StreamNotFound", "NOT_FOUND")
		return
	}
	s.streams[rid] = append(s.streams[rid], rec)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeConjureError(w http.ResponseWriter, status int, name, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"errorName":       name,
		"errorCode":       code,
		"errorInstanceId": "mock",
	})
}
