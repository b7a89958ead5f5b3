// Package auth resolves the static credential pair used for one review host.
package auth

import (
	"encoding/base64"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

// CredentialStore is the lookup contract of whatever holds the user's
// passwords. ok is false when the store has no entry for host.
type CredentialStore interface {
	Lookup(host string) (username, password string, ok bool, err error)
}

// Credentials is one username/password pair. It lives only as long as the
// request that needs it.
type Credentials struct {
	Username string
	Password string
}

// Token is the Basic auth token: base64("username:password").
func (c Credentials) Token() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
}

// Header is the full Authorization header value.
func (c Credentials) Header() string {
	return "Basic " + c.Token()
}

// Provider reads the store on every call; nothing is cached.
type Provider struct {
	store CredentialStore
}

func NewProvider(store CredentialStore) *Provider {
	return &Provider{store: store}
}

// Resolve looks up the credentials stored for host.
func (p *Provider) Resolve(host string) (Credentials, error) {
	username, password, ok, err := p.store.Lookup(host)
	if err != nil {
		return Credentials{}, domainErrors.ErrCredentialStore.WithError(err).WithContext("host", host)
	}
	if !ok {
		return Credentials{}, domainErrors.ErrNoCredentials.WithContext("host", host)
	}
	return Credentials{Username: username, Password: password}, nil
}
