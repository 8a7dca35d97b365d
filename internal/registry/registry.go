// Package registry keeps the set of live S3 repositories by name.
//
// Registering builds the repository completely before it becomes visible;
// a failed registration leaves nothing behind. Unregistering closes the
// repository's storage client.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
	"github.com/koustreak/s3repo/internal/logger"
	"github.com/koustreak/s3repo/internal/repository"
	"github.com/koustreak/s3repo/internal/settings"
	"golang.org/x/sync/errgroup"
)

// Registry maps repository names to constructed repositories.
// It is safe for concurrent use.
type Registry struct {
	node    settings.Provider
	factory filestore.ClientFactory
	log     *logger.Logger

	mu    sync.RWMutex
	repos map[string]*repository.Repository
}

// New returns an empty registry. node supplies component defaults and the
// legacy region alias; factory builds storage clients.
func New(node settings.Provider, factory filestore.ClientFactory, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		node:    node,
		factory: factory,
		log:     log,
		repos:   make(map[string]*repository.Repository),
	}
}

// Register builds a repository from its settings and adds it under name.
func (r *Registry) Register(ctx context.Context, name string, repoSettings settings.Provider) (*repository.Repository, error) {
	if name == "" {
		return nil, errs.New(errs.ErrKindInvalidSetting, "repository name must not be empty")
	}
	if r.exists(name) {
		return nil, alreadyExists(name)
	}

	log := r.log.With().Str("repository", name).Logger()
	repo, err := repository.Open(ctx, name, repository.Sources{Repository: repoSettings, Node: r.node}, r.factory, log)
	if err != nil {
		log.ErrorWith("failed to register repository", err, nil)
		return nil, err
	}

	r.mu.Lock()
	if _, ok := r.repos[name]; ok {
		r.mu.Unlock()
		_ = repo.Close()
		return nil, alreadyExists(name)
	}
	r.repos[name] = repo
	r.mu.Unlock()

	log.InfoObject("repository registered", "repository_config", repo.Config())
	return repo, nil
}

// RegisterAll registers every entry of defs concurrently. When any entry
// fails, the ones that succeeded are unregistered again and the first
// error is returned.
func (r *Registry) RegisterAll(ctx context.Context, defs map[string]settings.Map) error {
	var (
		mu   sync.Mutex
		done []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, s := range defs {
		g.Go(func() error {
			if _, err := r.Register(gctx, name, s); err != nil {
				return err
			}
			mu.Lock()
			done = append(done, name)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if len(done) > 0 {
			r.log.Warn("bulk registration failed, unregistering repositories registered so far")
		}
		for _, name := range done {
			_ = r.Unregister(name)
		}
		return err
	}
	return nil
}

// Unregister removes name and closes its storage client.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	repo, ok := r.repos[name]
	delete(r.repos, name)
	r.mu.Unlock()

	if !ok {
		return notFound(name)
	}
	r.log.With().Str("repository", name).Logger().Info("repository unregistered")
	return repo.Close()
}

// Get returns the repository registered under name.
func (r *Registry) Get(name string) (*repository.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[name]
	if !ok {
		return nil, notFound(name)
	}
	return repo, nil
}

// Names returns the registered repository names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.repos))
	for name := range r.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unregisters every repository.
func (r *Registry) Close() error {
	var first error
	for _, name := range r.Names() {
		if err := r.Unregister(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Registry) exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.repos[name]
	return ok
}

func alreadyExists(name string) error {
	return &errs.Error{Kind: errs.ErrKindAlreadyExists, Repository: name, Message: "repository already registered"}
}

func notFound(name string) error {
	return &errs.Error{Kind: errs.ErrKindNotFound, Repository: name, Message: "repository not registered"}
}
