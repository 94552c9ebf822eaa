// Package cache implements the local single-slot mirror of the last saved profile.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
)

// ProfileKey is the slot holding the serialized profile.
const ProfileKey = "profileInfo"

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("cache key not found")

// Store is a string-keyed byte slot storage scope.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Clear removes every key in the scope, not only the profile slot.
	Clear(ctx context.Context) error
	Close() error
}

// ProfileCache owns the read/write policy for the profile slot so callers
// share one way of handling missing or corrupt entries.
type ProfileCache struct {
	store Store
}

// NewProfileCache wraps store.
func NewProfileCache(store Store) *ProfileCache {
	return &ProfileCache{store: store}
}

// Load returns the cached profile. Misses, read failures, malformed JSON and
// entries that decode to an empty profile (null, {}) all report false so the
// caller falls back to a remote fetch.
func (c *ProfileCache) Load(ctx context.Context) (profile.Profile, bool) {
	raw, err := c.store.Get(ctx, ProfileKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.LogWarn(ctx, "profile cache read failed", zap.Error(err))
		}
		return profile.Profile{}, false
	}
	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		logging.LogWarn(ctx, "discarding malformed profile cache entry",
			zap.Error(err),
			zap.Int("bytes", len(raw)),
		)
		return profile.Profile{}, false
	}
	if p == (profile.Profile{}) {
		logging.LogWarn(ctx, "discarding empty profile cache entry", zap.Int("bytes", len(raw)))
		return profile.Profile{}, false
	}
	return p, true
}

// Save overwrites the slot with p.
func (c *ProfileCache) Save(ctx context.Context, p profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := c.store.Set(ctx, ProfileKey, raw); err != nil {
		return fmt.Errorf("writing profile cache: %w", err)
	}
	return nil
}

// Clear wipes the whole storage scope.
func (c *ProfileCache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing profile cache: %w", err)
	}
	return nil
}
