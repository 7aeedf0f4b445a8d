package profile

import (
	"context"
	"sync"

	"jobsonar/internal/embeddings"
	"jobsonar/internal/match"
)

// Cache holds the prepared match.Profile per user. Set rebuilds the
// embedding and skill set from the new text in one step, so a cached
// profile can never mix old and new state. The cache is injected into
// its consumers, not reached through a package global.
type Cache struct {
	provider embeddings.Provider

	mu       sync.RWMutex
	profiles map[int64]*match.Profile
}

// NewCache creates a profile cache backed by the given embedding provider
func NewCache(provider embeddings.Provider) *Cache {
	return &Cache{
		provider: provider,
		profiles: make(map[int64]*match.Profile),
	}
}

// Get returns the cached profile for a user, or nil
func (c *Cache) Get(userID int64) *match.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[userID]
}

// Set builds and caches the profile for a user from its text
func (c *Cache) Set(ctx context.Context, userID int64, text string) (*match.Profile, error) {
	built, err := match.BuildProfile(ctx, c.provider, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.profiles[userID] = built
	c.mu.Unlock()
	return built, nil
}

// Delete removes the cached profile for a user
func (c *Cache) Delete(userID int64) {
	c.mu.Lock()
	delete(c.profiles, userID)
	c.mu.Unlock()
}

// Load returns the cached profile, building it from the store on a
// miss. No stored profile returns (nil, nil).
func (c *Cache) Load(ctx context.Context, store *Store, userID int64) (*match.Profile, error) {
	if cached := c.Get(userID); cached != nil {
		return cached, nil
	}

	text, err := store.Get(userID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	return c.Set(ctx, userID, text)
}
