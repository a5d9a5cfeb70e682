package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	attemptStore       *AttemptStore
	cachedAttemptStore *CachedAttemptStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// BuildStores accepts a *bun.DB or anything exposing DB() *bun.DB, such as a
// go-persistence-bun client.
func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.attemptStore != nil {
		return nil
	}
	store, err := NewAttemptStore(f.db)
	if err != nil {
		return err
	}
	f.attemptStore = store
	return nil
}

// WithCache wraps the attempt store in a go-repository-cache layer. Later
// calls to CachedAttemptStore return the same instance.
func (f *RepositoryFactory) WithCache(cacheService repositorycache.CacheService) (*CachedAttemptStore, error) {
	if f == nil || f.attemptStore == nil {
		return nil, fmt.Errorf("sqlstore: stores are not built")
	}
	if f.cachedAttemptStore != nil {
		return f.cachedAttemptStore, nil
	}
	cached, err := NewCachedAttemptStore(f.attemptStore, cacheService)
	if err != nil {
		return nil, err
	}
	f.cachedAttemptStore = cached
	return cached, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) AttemptStore() *AttemptStore {
	if f == nil {
		return nil
	}
	return f.attemptStore
}

func (f *RepositoryFactory) CachedAttemptStore() *CachedAttemptStore {
	if f == nil {
		return nil
	}
	return f.cachedAttemptStore
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
