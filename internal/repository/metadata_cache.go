package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/model"
)

// tombstone marks an id whose record is being or has been deleted. Read-through
// fills never overwrite it, so a lookup that raced a delete cannot put the
// record back.
const tombstone = "deleted"

// cachedMetadataStore keeps FindByID results in redis. Redis is never the
// source of truth: every cache failure is logged and the call proceeds
// against the wrapped store.
type cachedMetadataStore struct {
	next MetadataStore
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

func NewCachedMetadataStore(next MetadataStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) MetadataStore {
	return &cachedMetadataStore{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "metadata_cache").Logger(),
	}
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("file_metadata:%s", id)
}

func (c *cachedMetadataStore) Save(ctx context.Context, file *model.FileMetadata) error {
	if err := c.next.Save(ctx, file); err != nil {
		return err
	}
	c.put(ctx, file)
	return nil
}

func (c *cachedMetadataStore) FindByID(ctx context.Context, id uuid.UUID) (*model.FileMetadata, error) {
	data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil && string(data) == tombstone:
		return c.next.FindByID(ctx, id)
	case err == nil:
		var file model.FileMetadata
		if err := json.Unmarshal(data, &file); err == nil {
			return &file, nil
		}
		c.log.Warn().Str("id", id.String()).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("id", id.String()).Msg("cache read failed")
	}

	file, err := c.next.FindByID(ctx, id)
	if err != nil || file == nil {
		return file, err
	}
	c.fill(ctx, file)
	return file, nil
}

func (c *cachedMetadataStore) FindByLocator(ctx context.Context, locator string) (*model.FileMetadata, error) {
	return c.next.FindByLocator(ctx, locator)
}

func (c *cachedMetadataStore) FindAll(ctx context.Context, limit, offset int) ([]model.FileMetadata, error) {
	return c.next.FindAll(ctx, limit, offset)
}

// Delete marks the id before touching the wrapped store. If the delete fails
// the tombstone only costs cache hits until it expires.
func (c *cachedMetadataStore) Delete(ctx context.Context, file *model.FileMetadata) error {
	c.markDeleted(ctx, file.ID)
	return c.next.Delete(ctx, file)
}

func (c *cachedMetadataStore) DeleteByLocator(ctx context.Context, locator string) error {
	file, err := c.next.FindByLocator(ctx, locator)
	if err == nil && file != nil {
		c.markDeleted(ctx, file.ID)
	}
	return c.next.DeleteByLocator(ctx, locator)
}

// put overwrites whatever is cached, tombstones included.
func (c *cachedMetadataStore) put(ctx context.Context, file *model.FileMetadata) {
	data, ok := c.encode(file)
	if !ok {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(file.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("id", file.ID.String()).Msg("cache write failed")
	}
}

// fill only writes when the key is absent.
func (c *cachedMetadataStore) fill(ctx context.Context, file *model.FileMetadata) {
	data, ok := c.encode(file)
	if !ok {
		return
	}
	if err := c.rdb.SetNX(ctx, cacheKey(file.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("id", file.ID.String()).Msg("cache fill failed")
	}
}

func (c *cachedMetadataStore) encode(file *model.FileMetadata) ([]byte, bool) {
	data, err := json.Marshal(file)
	if err != nil {
		c.log.Warn().Err(err).Str("id", file.ID.String()).Msg("failed to encode cache entry")
		return nil, false
	}
	return data, true
}

func (c *cachedMetadataStore) markDeleted(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Set(ctx, cacheKey(id), tombstone, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("id", id.String()).Msg("cache tombstone write failed")
	}
}
