package profile

import (
	"context"

	"jobsonar/internal/match"
)

// OwnerSource adapts the profile store and cache to the single profile
// the pipeline matches against
type OwnerSource struct {
	cache   *Cache
	store   *Store
	ownerID int64
}

// NewOwnerSource creates a profile source bound to the owner's user ID
func NewOwnerSource(cache *Cache, store *Store, ownerID int64) *OwnerSource {
	return &OwnerSource{
		cache:   cache,
		store:   store,
		ownerID: ownerID,
	}
}

// OwnerProfile returns the owner's prepared profile, or (nil, nil) when
// none has been uploaded
func (s *OwnerSource) OwnerProfile(ctx context.Context) (*match.Profile, error) {
	return s.cache.Load(ctx, s.store, s.ownerID)
}
