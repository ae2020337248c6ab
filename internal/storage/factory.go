package storage

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultProvider is used when no backend is configured.
const DefaultProvider = "file"

// ProviderConfig holds the settings any backend may need.
type ProviderConfig struct {
	// Dir is the directory the file backend writes storage.json into.
	Dir string

	// RedisAddress is the Redis/Valkey server address (e.g., "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int

	// KeyPrefix overrides the redis key namespace.
	KeyPrefix string
}

// Provider constructs a Store from config.
type Provider func(cfg ProviderConfig) (Store, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a storage backend under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("storage: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("storage: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a Store using the named backend. An empty name selects
// DefaultProvider.
func New(name string, cfg ProviderConfig) (Store, error) {
	if name == "" {
		name = DefaultProvider
	}

	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("storage: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	return p(cfg)
}

// IsRegistered reports whether a backend with the given name exists.
func IsRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := providers[name]
	return ok
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
