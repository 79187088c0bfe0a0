package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNoProvider reports a ModelConfig that names no provider.
var ErrNoProvider = errors.New("model config names no provider")

// Factory resolves ModelConfig.Provider to a registered backend and asks it
// to build the model. The zero value is not usable; construct with
// NewFactory.
type Factory struct {
	mu       sync.RWMutex
	backends map[string]Provider
}

// NewFactory builds a factory with the given providers registered. Nil
// entries are skipped.
func NewFactory(providers ...Provider) *Factory {
	f := &Factory{backends: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		f.Register(p)
	}
	return f
}

// Register adds a provider, replacing any prior registration under the
// same name.
func (f *Factory) Register(p Provider) {
	if p == nil {
		return
	}
	f.mu.Lock()
	f.backends[p.Name()] = p
	f.mu.Unlock()
}

// Providers returns the registered backend names, sorted.
func (f *Factory) Providers() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.backends))
	for name := range f.backends {
		names = append(names, name)
	}
	f.mu.RUnlock()
	sort.Strings(names)
	return names
}

// NewModel builds a model through the backend cfg.Provider names.
func (f *Factory) NewModel(ctx context.Context, cfg ModelConfig) (Model, error) {
	name := strings.TrimSpace(cfg.Provider)
	if name == "" {
		return nil, ErrNoProvider
	}

	f.mu.RLock()
	backend, ok := f.backends[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered as %q (have: %s)", name, strings.Join(f.Providers(), ", "))
	}

	return backend.NewModel(ctx, cfg)
}
