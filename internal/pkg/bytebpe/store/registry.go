package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store persists a single Model.
type Store interface {
	Save(ctx context.Context, m *Model) error
	Load(ctx context.Context) (*Model, error)
	Close() error
}

type Factory func(ctx context.Context, path string) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("store: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("store: Register called twice for " + name)
	}
	registry[name] = factory
}

func Open(ctx context.Context, driver, path string) (Store, error) {
	registryMu.RLock()
	factory, ok := registry[driver]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (registered: %v)", driver, Drivers())
	}
	if path == "" {
		return nil, fmt.Errorf("store: path is required for driver %q", driver)
	}
	return factory(ctx, path)
}

func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
