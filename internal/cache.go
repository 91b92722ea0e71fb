package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ReplicaCache persists the last-fetched replica list between invocations,
// so train and chat can resolve a replica by UUID without hitting the API
// every time. Invalidated by --refresh and by reconfiguring.
type ReplicaCache struct {
	cacheDir string
}

// CachedReplicas is the on-disk cache index.
type CachedReplicas struct {
	FetchedAt   time.Time `yaml:"fetched_at"`
	OwnerFilter string    `yaml:"owner_filter,omitempty"`
	BaseURL     string    `yaml:"base_url"`
	Replicas    []Replica `yaml:"replicas"`
}

// DefaultCacheDir returns ~/.replicactl-cache.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".replicactl-cache"), nil
}

// NewReplicaCache creates a cache rooted at cacheDir.
func NewReplicaCache(cacheDir string) *ReplicaCache {
	return &ReplicaCache{cacheDir: cacheDir}
}

// IndexPath returns the path of the replica index file.
func (c *ReplicaCache) IndexPath() string {
	return filepath.Join(c.cacheDir, "replicas.yaml")
}

// Save writes the replica list to disk.
func (c *ReplicaCache) Save(cached *CachedReplicas) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := yaml.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal replica cache: %w", err)
	}
	if err := os.WriteFile(c.IndexPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write replica cache: %w", err)
	}
	return nil
}

// Load reads the cached replica list. A missing cache returns (nil, nil).
func (c *ReplicaCache) Load() (*CachedReplicas, error) {
	data, err := os.ReadFile(c.IndexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read replica cache: %w", err)
	}
	var cached CachedReplicas
	if err := yaml.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to parse replica cache: %w", err)
	}
	return &cached, nil
}

// Lookup finds a cached replica by UUID. Found is false on a cache miss or
// when no cache exists.
func (c *ReplicaCache) Lookup(uuid string) (Replica, bool) {
	cached, err := c.Load()
	if err != nil || cached == nil {
		return Replica{}, false
	}
	for _, r := range cached.Replicas {
		if r.UUID == uuid {
			return r, true
		}
	}
	return Replica{}, false
}

// Clear removes the cache index.
func (c *ReplicaCache) Clear() error {
	err := os.Remove(c.IndexPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
