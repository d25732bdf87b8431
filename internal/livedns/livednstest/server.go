// Package livednstest provides an in-memory LiveDNS API for tests.
package livednstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

// APIKey is the key the fake accepts unless Server.APIKey is changed.
const APIKey = "test-key"

// Server is a minimal LiveDNS v5 API backed by memory. Record collections are
// keyed by scope path: "/zones/<uuid>" or "/domains/<name>".
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	apiKey  string
	zones   []livedns.Zone
	records map[string][]livedns.RawRecord
	calls   []string // "METHOD /path" in arrival order

	createStatus int
}

// NewServer starts a fake and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		apiKey:       APIKey,
		records:      map[string][]livedns.RawRecord{},
		createStatus: http.StatusCreated,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// AddZone registers a zone and returns its scope path.
func (s *Server) AddZone(name, uuid string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = append(s.zones, livedns.Zone{Name: name, UUID: uuid})
	return "/zones/" + uuid
}

// Seed stores rec under scopePath, replacing any set with the same name and type.
func (s *Server) Seed(scopePath string, rec livedns.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(scopePath, rec)
}

// Lookup returns the stored record set for (name, type).
func (s *Server) Lookup(scopePath, name, recordType string) (livedns.RawRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(scopePath, name, recordType)
	if idx < 0 {
		return livedns.RawRecord{}, false
	}
	return s.records[scopePath][idx], true
}

// Count returns the number of record sets stored under scopePath.
func (s *Server) Count(scopePath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[scopePath])
}

// SetCreateStatus changes the status answered to POST. The record is still
// stored.
func (s *Server) SetCreateStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createStatus = status
}

// Calls returns every request seen so far as "METHOD /path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// MutatingCalls returns only the POST, PUT and DELETE requests.
func (s *Server) MutatingCalls() []string {
	var out []string
	for _, c := range s.Calls() {
		if !strings.HasPrefix(c, http.MethodGet+" ") {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)

	if r.Header.Get("X-Api-Key") != s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "The server could not verify that you authorized to access the document you requested."})
		return
	}

	if r.URL.Path == "/zones" && r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, s.zones)
		return
	}

	// /{zones|domains}/{id}/records[/name[/type]]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[2] != "records" || (parts[0] != "zones" && parts[0] != "domains") {
		notFound(w)
		return
	}
	scope := "/" + parts[0] + "/" + parts[1]
	if parts[0] == "zones" && !s.knownZone(parts[1]) {
		notFound(w)
		return
	}
	var name, recordType string
	if len(parts) > 3 {
		name = parts[3]
	}
	if len(parts) > 4 {
		recordType = parts[4]
	}

	switch {
	case r.Method == http.MethodGet && name == "":
		writeJSON(w, http.StatusOK, s.filter(scope, "", ""))
	case r.Method == http.MethodGet && recordType == "":
		matches := s.filter(scope, name, "")
		if len(matches) == 0 {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	case r.Method == http.MethodGet:
		idx := s.index(scope, name, recordType)
		if idx < 0 {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, s.records[scope][idx])
	case r.Method == http.MethodPost && name == "":
		var rec livedns.RawRecord
		if err := readJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": err.Error()})
			return
		}
		if s.index(scope, rec.Name, rec.Type) >= 0 {
			writeJSON(w, http.StatusConflict, map[string]any{"code": 409, "message": "A DNS Record already exists with same value"})
			return
		}
		s.upsert(scope, rec)
		writeJSON(w, s.createStatus, map[string]any{"message": "DNS Record Created"})
	case r.Method == http.MethodPut && recordType != "":
		var body livedns.RawRecord
		if err := readJSON(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": err.Error()})
			return
		}
		if body.Name != "" || body.Type != "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": "name and type belong in the path"})
			return
		}
		s.upsert(scope, livedns.RawRecord{Name: name, Type: recordType, Values: body.Values, TTL: body.TTL})
		writeJSON(w, http.StatusCreated, map[string]any{"message": "DNS Record Created"})
	case r.Method == http.MethodDelete && recordType != "":
		idx := s.index(scope, name, recordType)
		if idx < 0 {
			notFound(w)
			return
		}
		recs := s.records[scope]
		s.records[scope] = append(recs[:idx:idx], recs[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"code": 405, "message": "method not allowed"})
	}
}

func (s *Server) knownZone(uuid string) bool {
	for _, z := range s.zones {
		if z.UUID == uuid {
			return true
		}
	}
	return false
}

func (s *Server) index(scope, name, recordType string) int {
	for i, rec := range s.records[scope] {
		if rec.Name == name && rec.Type == recordType {
			return i
		}
	}
	return -1
}

func (s *Server) filter(scope, name, recordType string) []livedns.RawRecord {
	out := []livedns.RawRecord{}
	for _, rec := range s.records[scope] {
		if name != "" && rec.Name != name {
			continue
		}
		if recordType != "" && rec.Type != recordType {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Server) upsert(scope string, rec livedns.RawRecord) {
	if idx := s.index(scope, rec.Name, rec.Type); idx >= 0 {
		s.records[scope][idx] = rec
		return
	}
	s.records[scope] = append(s.records[scope], rec)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"code": 404, "message": "Can't find the DNS record", "object": "dns-record", "cause": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
