// Package commandtest runs commands against an in-process review server.
package commandtest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/git"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

// Request is one request seen by the fake server.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Server answers "METHOD /path" routes with a framed JSON payload.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []Request
}

type route struct {
	status  int
	payload string
	raw     bool
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]route)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers a framed JSON response. path excludes the endpoint prefix.
func (s *Server) Handle(method, path, payload string) {
	s.HandleStatus(method, path, http.StatusOK, payload)
}

func (s *Server) HandleStatus(method, path string, status int, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" /a"+path] = route{status: status, payload: payload}
}

// HandleRaw registers an unframed response body.
func (s *Server) HandleRaw(method, path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" /a"+path] = route{status: http.StatusOK, payload: body, raw: true}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := r.URL.EscapedPath()

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: path, Query: r.URL.RawQuery, Body: string(body)})
	rt, ok := s.routes[r.Method+" "+path]
	if !ok && r.URL.RawQuery != "" {
		rt, ok = s.routes[r.Method+" "+path+"?"+r.URL.RawQuery]
	}
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Not found: "+path)
		return
	}
	w.WriteHeader(rt.status)
	if rt.raw || rt.status >= 300 {
		_, _ = io.WriteString(w, rt.payload)
		return
	}
	if rt.payload != "" {
		_, _ = io.WriteString(w, ")]}'\n"+rt.payload)
	}
}

type staticStore struct{}

func (staticStore) Lookup(string) (string, string, bool, error) {
	return "alice", "secret", true, nil
}

// Env is a command environment wired to a Server.
type Env struct {
	Server       *Server
	Config       *config.Config
	Container    *di.Container
	Translations *i18n.Translations
	Out          *bytes.Buffer
}

// NewEnv builds an Env whose output is captured. gitDir, when set, is the
// working tree for git operations.
func NewEnv(t *testing.T, gitDir string) *Env {
	t.Helper()
	srv := NewServer(t)

	cfg := &config.Config{
		Host:           strings.TrimPrefix(srv.URL, "http://"),
		Protocol:       "http://",
		EndpointPrefix: "/a",
		Remote:         "origin",
		Language:       "en",
		QueryLimit:     25,
	}

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	opts := []di.Option{
		di.WithHTTPClient(srv.Client()),
		di.WithCredentialStore(staticStore{}),
		di.WithCacheDir(filepath.Join(t.TempDir(), "cache")),
	}
	if gitDir != "" {
		opts = append(opts, di.WithGitService(git.NewGitService(git.WithDir(gitDir))))
	}

	color.NoColor = true
	out := &bytes.Buffer{}
	prev := ui.Out
	ui.Out = out
	t.Cleanup(func() { ui.Out = prev })

	return &Env{
		Server:       srv,
		Config:       cfg,
		Container:    di.NewContainer(cfg, opts...),
		Translations: translations,
		Out:          out,
	}
}

// Run executes cmd as the only subcommand of a bare root.
func (e *Env) Run(cmd *cli.Command, args ...string) error {
	app := &cli.Command{Name: "mate-review", Commands: []*cli.Command{cmd}}
	return app.Run(context.Background(), append([]string{"mate-review"}, args...))
}
