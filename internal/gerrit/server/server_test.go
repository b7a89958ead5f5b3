package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matereview/internal/auth"
	"github.com/thomas-vilte/matereview/internal/gerrit/rest"
)

type staticAuth struct{}

func (staticAuth) Resolve(string) (auth.Credentials, error) {
	return auth.Credentials{Username: "u", Password: "p"}, nil
}

func newServer(t *testing.T) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a/config/server/version":
			_, _ = io.WriteString(w, ")]}'\n\"3.9.1\"\n")
		case "/a/config/server/info":
			_, _ = io.WriteString(w, `)]}'
{
  "accounts": {"visibility": "ALL"},
  "auth": {"auth_type": "LDAP"},
  "change": {"update_delay": 300, "submit_whole_topic": true},
  "download": {"schemes": {"ssh": {"url": "ssh://review.example.com:29418/${project}", "is_auth_required": true}}},
  "gerrit": {"all_projects": "All-Projects", "all_users": "All-Users"}
}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := rest.NewClient(strings.TrimPrefix(srv.URL, "http://"), staticAuth{},
		rest.WithProtocol("http://"), rest.WithHTTPClient(srv.Client()))
	return NewService(client)
}

func TestService_Version(t *testing.T) {
	version, err := newServer(t).Version(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "3.9.1", version)
}

func TestService_Info(t *testing.T) {
	info, err := newServer(t).Info(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "LDAP", info.Auth.AuthType)
	assert.True(t, info.Change.SubmitWholeTopic)
	assert.Equal(t, 300, info.Change.UpdateDelay)
	assert.True(t, info.Download.Schemes["ssh"].IsAuthRequired)
	assert.Equal(t, "All-Projects", info.Gerrit.AllProjects)
}
