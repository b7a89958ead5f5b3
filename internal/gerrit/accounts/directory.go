// Package accounts keeps the process-wide list of active accounts used to
// offer reviewer and assignee choices.
package accounts

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
)

const queryPath = "/accounts/?q=is:active&o=DETAILS&S="

// Syncer is the part of rest.Client the directory needs.
type Syncer interface {
	Sync(ctx context.Context, method, path string, body, out interface{}) error
}

// Store persists the list between processes, see cache.Cache.
type Store interface {
	Get(key string, out interface{}) (bool, error)
	Set(key string, value interface{}) error
	Delete(key string) error
}

// Directory loads the account list on first use and keeps it until
// Refresh or Invalidate. A failed load yields an empty list and is retried
// on the next call.
type Directory struct {
	client   Syncer
	store    Store
	storeKey string

	mu       sync.Mutex
	loaded   bool
	accounts []models.AccountInfo
}

type Option func(*Directory)

// WithStore makes List read a persisted copy under key before asking the
// server, and saves every successful load there.
func WithStore(store Store, key string) Option {
	return func(d *Directory) {
		d.store = store
		d.storeKey = key
	}
}

func NewDirectory(client Syncer, opts ...Option) *Directory {
	d := &Directory{client: client}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// List returns the cached accounts, loading them if needed.
func (d *Directory) List(ctx context.Context) []models.AccountInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded && !d.restore(ctx) {
		d.load(ctx)
	}
	return append([]models.AccountInfo(nil), d.accounts...)
}

// Refresh drops the cache and loads it again.
func (d *Directory) Refresh(ctx context.Context) []models.AccountInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loaded = false
	d.accounts = nil
	d.forget(ctx)
	d.load(ctx)
	return append([]models.AccountInfo(nil), d.accounts...)
}

// Invalidate makes the next List reload, dropping the persisted copy too.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loaded = false
	d.accounts = nil
	d.forget(context.Background())
}

// ByID finds an account in the cached list.
func (d *Directory) ByID(ctx context.Context, id int) (models.AccountInfo, bool) {
	for _, a := range d.List(ctx) {
		if a.AccountID == id {
			return a, true
		}
	}
	return models.AccountInfo{}, false
}

// Identifiers returns the reviewer/assignee input string of every account.
func (d *Directory) Identifiers(ctx context.Context) []string {
	accounts := d.List(ctx)
	ids := make([]string, 0, len(accounts))
	for i := range accounts {
		ids = append(ids, accounts[i].Identifier())
	}
	return ids
}

// load must be called with mu held.
func (d *Directory) load(ctx context.Context) {
	log := logger.FromContext(ctx)

	var all []models.AccountInfo
	for {
		var page []models.AccountInfo
		if err := d.client.Sync(ctx, http.MethodGet, queryPath+strconv.Itoa(len(all)), nil, &page); err != nil {
			log.Warn("account directory unavailable", "error", err)
			d.accounts = nil
			return
		}
		all = append(all, page...)
		if len(page) == 0 || !page[len(page)-1].MoreAccounts {
			break
		}
	}

	for i := range all {
		all[i].MoreAccounts = false
	}
	d.accounts = all
	d.loaded = true
	log.Debug("account directory loaded", "count", len(all))

	if d.store != nil {
		if err := d.store.Set(d.storeKey, all); err != nil {
			log.Debug("could not persist account directory", "error", err)
		}
	}
}

// restore must be called with mu held.
func (d *Directory) restore(ctx context.Context) bool {
	if d.store == nil {
		return false
	}
	var cached []models.AccountInfo
	found, err := d.store.Get(d.storeKey, &cached)
	if err != nil {
		logger.FromContext(ctx).Debug("ignoring persisted account directory", "error", err)
		return false
	}
	if !found {
		return false
	}
	d.accounts = cached
	d.loaded = true
	return true
}

func (d *Directory) forget(ctx context.Context) {
	if d.store == nil {
		return
	}
	if err := d.store.Delete(d.storeKey); err != nil {
		logger.FromContext(ctx).Debug("could not drop persisted account directory", "error", err)
	}
}
