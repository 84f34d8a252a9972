package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/cache"
)

// KeyRepository defines the persistence operations the cache decorator wraps.
type KeyRepository interface {
	CreateOrRotate(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error)
	GetByValue(ctx context.Context, value string) (*domain.APIKey, error)
	GetByOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error)
	List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)
	Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error)
	SetRevoked(ctx context.Context, id uuid.UUID, revoked bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CachedKeyRepository decorates a KeyRepository with an in-memory cache.
//
// Single-key lookups and list results are cached under separate TTLs. Every
// mutation drops both caches before returning: rotation changes a token value
// this decorator cannot name after the fact, so targeted eviction is not
// possible and a full drop is the only way to keep reads within one TTL of
// the store.
type CachedKeyRepository struct {
	inner      KeyRepository
	entryCache cache.Cache[*domain.APIKey]
	listCache  cache.Cache[[]*domain.APIKey]
	entryTTL   time.Duration
	listTTL    time.Duration
}

// NewCachedKeyRepository creates a new CachedKeyRepository
func NewCachedKeyRepository(
	inner KeyRepository,
	entryCache cache.Cache[*domain.APIKey],
	listCache cache.Cache[[]*domain.APIKey],
	entryTTL time.Duration,
	listTTL time.Duration,
) *CachedKeyRepository {
	return &CachedKeyRepository{
		inner:      inner,
		entryCache: entryCache,
		listCache:  listCache,
		entryTTL:   entryTTL,
		listTTL:    listTTL,
	}
}

// CreateOrRotate delegates to the inner repository and drops the caches
func (r *CachedKeyRepository) CreateOrRotate(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	stored, err := r.inner.CreateOrRotate(ctx, key)
	if err != nil {
		return nil, err
	}
	r.dropCaches()
	return stored, nil
}

// GetByValue retrieves a key by token value, consulting the cache first.
// Cache keys are derived from a digest of the token so plaintext token
// values never appear as cache keys.
func (r *CachedKeyRepository) GetByValue(ctx context.Context, value string) (*domain.APIKey, error) {
	cacheKey := "value:" + digest(value)
	if key, ok := r.entryCache.Get(cacheKey); ok {
		return key, nil
	}

	key, err := r.inner.GetByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	r.entryCache.Set(cacheKey, key, r.entryTTL)
	return key, nil
}

// GetByOwner retrieves the key for an owner login, consulting the cache first
func (r *CachedKeyRepository) GetByOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	cacheKey := "owner:" + ownerLogin
	if key, ok := r.entryCache.Get(cacheKey); ok {
		return key, nil
	}

	key, err := r.inner.GetByOwner(ctx, ownerLogin)
	if err != nil {
		return nil, err
	}

	r.entryCache.Set(cacheKey, key, r.entryTTL)
	return key, nil
}

// List retrieves keys, consulting the list cache first
func (r *CachedKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	cacheKey := fmt.Sprintf("list:%d:%d", offset, limit)
	if keys, ok := r.listCache.Get(cacheKey); ok {
		return keys, nil
	}

	keys, err := r.inner.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	r.listCache.Set(cacheKey, keys, r.listTTL)
	return keys, nil
}

// Search retrieves keys matching a term, consulting the list cache first
func (r *CachedKeyRepository) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	cacheKey := fmt.Sprintf("search:%s:%d:%d", digest(term), offset, limit)
	if keys, ok := r.listCache.Get(cacheKey); ok {
		return keys, nil
	}

	keys, err := r.inner.Search(ctx, term, offset, limit)
	if err != nil {
		return nil, err
	}

	r.listCache.Set(cacheKey, keys, r.listTTL)
	return keys, nil
}

// SetRevoked delegates to the inner repository and drops the caches
func (r *CachedKeyRepository) SetRevoked(ctx context.Context, id uuid.UUID, revoked bool) error {
	if err := r.inner.SetRevoked(ctx, id, revoked); err != nil {
		return err
	}
	r.dropCaches()
	return nil
}

// Delete delegates to the inner repository and drops the caches
func (r *CachedKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.dropCaches()
	return nil
}

// dropCaches clears both caches and blocks until the clears are visible,
// so a read that starts after a mutation returns never sees the old row.
func (r *CachedKeyRepository) dropCaches() {
	r.entryCache.Clear()
	r.listCache.Clear()
	r.entryCache.Wait()
	r.listCache.Wait()
}

func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
