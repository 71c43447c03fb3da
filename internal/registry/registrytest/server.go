// Package registrytest provides an in-process build registry for tests.
package registrytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
)

// BasePath is where the fake registry mounts its API.
const BasePath = "/api/v1"

// Server is a fake registry backed by httptest.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	projects  map[string]map[string][]int
	failures  map[string]int
	downloads map[string]int
}

// New starts a fake registry that is closed when the test ends.
func New(tb testing.TB) *Server {
	tb.Helper()

	s := &Server{
		projects:  make(map[string]map[string][]int),
		failures:  make(map[string]int),
		downloads: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+BasePath+"/{project}", s.handleProject)
	mux.HandleFunc("GET "+BasePath+"/{project}/{version}", s.handleVersion)
	mux.HandleFunc("GET "+BasePath+"/{project}/{version}/{build}/download", s.handleDownload)

	s.Server = httptest.NewServer(mux)
	tb.Cleanup(s.Close)

	return s
}

// BaseURL is the registry root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

// SetBuilds publishes the builds of one version, replacing earlier ones.
func (s *Server) SetBuilds(project, version string, builds ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects[project] == nil {
		s.projects[project] = make(map[string][]int)
	}

	s.projects[project][version] = slices.Sorted(slices.Values(builds))
}

// AddVersion lists a version without builds, e.g. an unparseable one.
func (s *Server) AddVersion(project, version string) {
	s.SetBuilds(project, version)
}

// Fail makes every request about the version answer with status.
func (s *Server) Fail(project, version string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[project+"/"+version] = status
}

// Downloads returns how many artifacts of the version were served.
func (s *Server) Downloads(project, version string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.downloads[project+"/"+version]
}

// TotalDownloads returns how many artifacts were served overall.
func (s *Server) TotalDownloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.downloads {
		total += n
	}

	return total
}

// Artifact is the deterministic body served for a build.
func Artifact(project, version string, build int) []byte {
	return fmt.Appendf(nil, "%s-%s-build-%d", project, version, build)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	s.mu.Lock()
	versions, ok := s.projects[project]
	names := make([]string, 0, len(versions))

	for name := range versions {
		names = append(names, name)
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	slices.Sort(names)
	writeJSON(w, map[string]any{"project": project, "versions": names})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	project, version := r.PathValue("project"), r.PathValue("version")

	builds, status := s.lookup(project, version)
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)

		return
	}

	all := make([]string, 0, len(builds))
	for _, b := range builds {
		all = append(all, strconv.Itoa(b))
	}

	writeJSON(w, map[string]any{
		"project": project,
		"version": version,
		"builds": map[string]any{
			"latest": builds[len(builds)-1],
			"all":    all,
		},
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	project, version := r.PathValue("project"), r.PathValue("version")

	builds, status := s.lookup(project, version)
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)

		return
	}

	build, err := strconv.Atoi(r.PathValue("build"))
	if err != nil || !slices.Contains(builds, build) {
		http.NotFound(w, r)

		return
	}

	body := Artifact(project, version, build)

	s.mu.Lock()
	s.downloads[project+"/"+version]++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/java-archive")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

// lookup returns the builds of a version or the status to answer with.
func (s *Server) lookup(project, version string) ([]int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failures[project+"/"+version]; ok {
		return nil, status
	}

	builds := s.projects[project][version]
	if len(builds) == 0 {
		return nil, http.StatusNotFound
	}

	return builds, http.StatusOK
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
