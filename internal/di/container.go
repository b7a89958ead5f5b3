package di

import (
	"net/http"
	"sync"
	"time"

	"github.com/thomas-vilte/matereview/internal/auth"
	"github.com/thomas-vilte/matereview/internal/cache"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/gerrit/accounts"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/gerrit/rest"
	"github.com/thomas-vilte/matereview/internal/gerrit/server"
	"github.com/thomas-vilte/matereview/internal/gerrit/topic"
	"github.com/thomas-vilte/matereview/internal/git"
	"github.com/thomas-vilte/matereview/internal/review"
)

// Container builds the services from the configuration on first use. The
// REST client needs a configured host, so everything behind it is lazy.
type Container struct {
	config     *config.Config
	httpClient rest.HTTPClient
	store      auth.CredentialStore
	cacheDir   string

	mu        sync.Mutex
	client    *rest.Client
	directory *accounts.Directory
	gitSvc    *git.GitService
}

type Option func(*Container)

// WithHTTPClient replaces the transport of the REST client.
func WithHTTPClient(c rest.HTTPClient) Option {
	return func(ct *Container) {
		ct.httpClient = c
	}
}

// WithCredentialStore replaces the netrc store.
func WithCredentialStore(s auth.CredentialStore) Option {
	return func(ct *Container) {
		ct.store = s
	}
}

// WithGitService replaces the workspace.
func WithGitService(g *git.GitService) Option {
	return func(ct *Container) {
		ct.gitSvc = g
	}
}

// WithCacheDir moves the on-disk cache.
func WithCacheDir(dir string) Option {
	return func(ct *Container) {
		ct.cacheDir = dir
	}
}

const accountsTTL = 24 * time.Hour

func NewContainer(cfg *config.Config, opts ...Option) *Container {
	c := &Container{
		config:     cfg,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = auth.NewNetrcStore(cfg.AuthFile)
	}
	if c.gitSvc == nil {
		c.gitSvc = git.NewGitService()
	}
	if c.cacheDir == "" {
		if dir, err := cache.DefaultDir(); err == nil {
			c.cacheDir = dir
		}
	}
	return c
}

func (c *Container) Config() *config.Config {
	return c.config
}

// Client returns the REST client, failing when no host is configured.
func (c *Container) Client() (*rest.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if err := c.config.RequireHost(); err != nil {
		return nil, err
	}

	c.client = rest.NewClient(c.config.Host, auth.NewProvider(c.store),
		rest.WithProtocol(c.config.Protocol),
		rest.WithEndpointPrefix(c.config.EndpointPrefix),
		rest.WithHTTPClient(c.httpClient))
	return c.client, nil
}

func (c *Container) Changes() (*changes.Service, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	return changes.NewService(client), nil
}

func (c *Container) Fanout() (*topic.Fanout, error) {
	svc, err := c.Changes()
	if err != nil {
		return nil, err
	}
	return topic.NewFanout(svc, 0), nil
}

func (c *Container) TopicOperations() (*topic.Operations, error) {
	svc, err := c.Changes()
	if err != nil {
		return nil, err
	}
	return topic.NewOperations(topic.NewFanout(svc, 0), svc), nil
}

func (c *Container) Server() (*server.Service, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	return server.NewService(client), nil
}

// Accounts returns the process-wide account directory.
func (c *Container) Accounts() (*accounts.Directory, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.directory == nil {
		var opts []accounts.Option
		if store, err := c.Cache(); err == nil {
			opts = append(opts, accounts.WithStore(store, cache.Key("accounts", c.config.Protocol+c.config.Host)))
		}
		c.directory = accounts.NewDirectory(client, opts...)
	}
	return c.directory, nil
}

// Cache opens the on-disk cache.
func (c *Container) Cache() (*cache.Cache, error) {
	if c.cacheDir == "" {
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, err
		}
		c.cacheDir = dir
	}
	return cache.NewCache(c.cacheDir, accountsTTL)
}

func (c *Container) Git() *git.GitService {
	return c.gitSvc
}

func (c *Container) Reconciler() (*review.Reconciler, error) {
	dir, err := c.Accounts()
	if err != nil {
		return nil, err
	}
	return review.NewReconciler(c.gitSvc, c.config.Remote, review.WithOwnerResolver(dir)), nil
}
