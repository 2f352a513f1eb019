package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-extensions/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const extensionCacheKeyPrefix = "go-extensions::extension::v1"

// CachedExtensionStore layers a read-through cache over the extension catalog.
// GetByCode is the hot lookup on every install and callback; writes invalidate
// the affected code so catalog changes are visible on the next read.
type CachedExtensionStore struct {
	base  core.ExtensionStore
	cache repositorycache.CacheService
}

func NewCachedExtensionStore(base core.ExtensionStore, cacheService repositorycache.CacheService) (*CachedExtensionStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base extension store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: extension cache service is required")
	}
	return &CachedExtensionStore{base: base, cache: cacheService}, nil
}

func ExtensionCacheKey(code string) string {
	return extensionCacheKeyPrefix + "::" + url.PathEscape(strings.TrimSpace(strings.ToLower(code)))
}

func (s *CachedExtensionStore) Create(ctx context.Context, in core.CreateExtensionInput) (core.Extension, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: cached extension store is not configured")
	}
	created, err := s.base.Create(ctx, in)
	if err != nil {
		return core.Extension{}, err
	}
	if err := s.cache.Delete(ctx, ExtensionCacheKey(created.Code)); err != nil {
		return core.Extension{}, err
	}
	return created, nil
}

func (s *CachedExtensionStore) Get(ctx context.Context, id string) (core.Extension, error) {
	if s == nil || s.base == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: cached extension store is not configured")
	}
	return s.base.Get(ctx, id)
}

func (s *CachedExtensionStore) GetByCode(ctx context.Context, code string) (core.Extension, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: cached extension store is not configured")
	}
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return core.Extension{}, fmt.Errorf("%w: extension code is required", core.ErrInvalidRequest)
	}
	return repositorycache.GetOrFetch(ctx, s.cache, ExtensionCacheKey(code), func(ctx context.Context) (core.Extension, error) {
		return s.base.GetByCode(ctx, code)
	})
}

func (s *CachedExtensionStore) List(ctx context.Context) ([]core.Extension, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached extension store is not configured")
	}
	return s.base.List(ctx)
}

func (s *CachedExtensionStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s == nil || s.base == nil {
		return false, fmt.Errorf("sqlstore: cached extension store is not configured")
	}
	return s.base.CodeExists(ctx, code)
}

var _ core.ExtensionStore = (*CachedExtensionStore)(nil)
