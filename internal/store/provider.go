package store

import "errors"

var ErrStoreNotFound = errors.New("no store registered for project")

// Provider resolves the backing store for a project. Multi-tenant
// deployments can shard projects across databases; the default deployment
// serves every project from one store.
type Provider interface {
	Provide(projectID string) (Store, error)
}

type ProjectStoreProvider struct {
	stores map[string]Store
}

func NewProjectStoreProvider() *ProjectStoreProvider {
	return &ProjectStoreProvider{
		stores: make(map[string]Store),
	}
}

// Register binds a project to its backing store.
func (p *ProjectStoreProvider) Register(projectID string, store Store) {
	p.stores[projectID] = store
}

func (p *ProjectStoreProvider) Provide(projectID string) (Store, error) {
	if store, ok := p.stores[projectID]; ok {
		return store, nil
	}

	return nil, ErrStoreNotFound
}

type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide(projectID string) (Store, error) {
	return p.store, nil
}
