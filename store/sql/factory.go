// Package sqlstore implements the core store contracts over bun, one store per
// aggregate.
package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-extensions/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db    *bun.DB
	cache repositorycache.CacheService

	accountStore      *AccountStore
	extensionStore    core.ExtensionStore
	installationStore *InstallationStore
	profileStore      *ProfileStore
	webhookStore      *WebhookStore
	actionStore       *ActionStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

// WithCache makes the factory wrap the extension store in the read-through
// cache. Must be set before BuildStores.
func (f *RepositoryFactory) WithCache(cacheService repositorycache.CacheService) *RepositoryFactory {
	if f != nil {
		f.cache = cacheService
	}
	return f
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.installationStore != nil && f.accountStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) AccountStore() core.AccountStore {
	if f == nil {
		return nil
	}
	return f.accountStore
}

func (f *RepositoryFactory) ExtensionStore() core.ExtensionStore {
	if f == nil {
		return nil
	}
	return f.extensionStore
}

func (f *RepositoryFactory) InstallationStore() core.InstallationStore {
	if f == nil {
		return nil
	}
	return f.installationStore
}

func (f *RepositoryFactory) ProfileStore() core.ProfileStore {
	if f == nil {
		return nil
	}
	return f.profileStore
}

func (f *RepositoryFactory) WebhookStore() core.WebhookStore {
	if f == nil {
		return nil
	}
	return f.webhookStore
}

func (f *RepositoryFactory) ActionStore() core.ActionStore {
	if f == nil {
		return nil
	}
	return f.actionStore
}

func (f *RepositoryFactory) initStores() error {
	accountStore, err := NewAccountStore(f.db)
	if err != nil {
		return err
	}
	f.accountStore = accountStore

	extensionStore, err := NewExtensionStore(f.db)
	if err != nil {
		return err
	}
	if f.cache != nil {
		cached, cacheErr := NewCachedExtensionStore(extensionStore, f.cache)
		if cacheErr != nil {
			return cacheErr
		}
		f.extensionStore = cached
	} else {
		f.extensionStore = extensionStore
	}

	installationStore, err := NewInstallationStore(f.db)
	if err != nil {
		return err
	}
	f.installationStore = installationStore

	profileStore, err := NewProfileStore(f.db)
	if err != nil {
		return err
	}
	f.profileStore = profileStore

	webhookStore, err := NewWebhookStore(f.db)
	if err != nil {
		return err
	}
	f.webhookStore = webhookStore

	actionStore, err := NewActionStore(f.db)
	if err != nil {
		return err
	}
	f.actionStore = actionStore

	return nil
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
