package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-transform/core"
)

const publishedSpecCacheKeyPrefix = "go-transform::published_spec::v1"

// publishedSpecEntry is the cached shape for GetPublished lookups; the
// found flag keeps negative lookups cacheable.
type publishedSpecEntry struct {
	Spec  core.MappingSpec
	Found bool
}

// CachedSpecStore layers a read-through cache over a MappingSpecStore.
// Only GetPublished is cached; that is the lookup every transform run
// performs. Writes invalidate the published entry for the spec.
type CachedSpecStore struct {
	base  core.MappingSpecStore
	cache repositorycache.CacheService
}

func NewCachedSpecStore(base core.MappingSpecStore, cacheService repositorycache.CacheService) (*CachedSpecStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base mapping spec store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: spec cache service is required")
	}
	return &CachedSpecStore{base: base, cache: cacheService}, nil
}

// PublishedSpecCacheKey returns the deterministic cache key for published
// spec reads: go-transform::published_spec::v1::<spec_id> with the spec id
// URL-path escaped.
func PublishedSpecCacheKey(specID string) (string, error) {
	specID = strings.TrimSpace(specID)
	if specID == "" {
		return "", fmt.Errorf("sqlstore: spec id is required")
	}
	return strings.Join([]string{publishedSpecCacheKeyPrefix, url.PathEscape(specID)}, "::"), nil
}

func (s *CachedSpecStore) GetPublished(ctx context.Context, specID string) (core.MappingSpec, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	cacheKey, err := PublishedSpecCacheKey(specID)
	if err != nil {
		return core.MappingSpec{}, false, err
	}

	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (publishedSpecEntry, error) {
		spec, found, fetchErr := s.base.GetPublished(ctx, specID)
		if fetchErr != nil {
			return publishedSpecEntry{}, fetchErr
		}
		return publishedSpecEntry{Spec: spec, Found: found}, nil
	})
	if err != nil {
		return core.MappingSpec{}, false, err
	}
	return entry.Spec, entry.Found, nil
}

func (s *CachedSpecStore) CreateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	return s.base.CreateDraft(ctx, spec)
}

func (s *CachedSpecStore) UpdateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	updated, err := s.base.UpdateDraft(ctx, spec)
	if err != nil {
		return core.MappingSpec{}, err
	}
	if err := s.invalidate(ctx, updated.SpecID); err != nil {
		return core.MappingSpec{}, err
	}
	return updated, nil
}

func (s *CachedSpecStore) SetStatus(ctx context.Context, specID string, version int, status core.MappingSpecStatus, now time.Time) (core.MappingSpec, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	updated, err := s.base.SetStatus(ctx, specID, version, status, now)
	if err != nil {
		return core.MappingSpec{}, err
	}
	if err := s.invalidate(ctx, updated.SpecID); err != nil {
		return core.MappingSpec{}, err
	}
	return updated, nil
}

func (s *CachedSpecStore) PublishVersion(ctx context.Context, specID string, version int, publishedAt time.Time) (core.MappingSpec, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	published, err := s.base.PublishVersion(ctx, specID, version, publishedAt)
	if err != nil {
		return core.MappingSpec{}, err
	}
	if err := s.invalidate(ctx, published.SpecID); err != nil {
		return core.MappingSpec{}, err
	}
	return published, nil
}

func (s *CachedSpecStore) GetVersion(ctx context.Context, specID string, version int) (core.MappingSpec, bool, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	return s.base.GetVersion(ctx, specID, version)
}

func (s *CachedSpecStore) GetLatest(ctx context.Context, specID string) (core.MappingSpec, bool, error) {
	if s == nil || s.base == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	return s.base.GetLatest(ctx, specID)
}

func (s *CachedSpecStore) List(ctx context.Context) ([]core.MappingSpec, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached spec store is not configured")
	}
	return s.base.List(ctx)
}

func (s *CachedSpecStore) invalidate(ctx context.Context, specID string) error {
	if s.cache == nil {
		return nil
	}
	cacheKey, err := PublishedSpecCacheKey(specID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
