// Package registry holds the process-wide table of available decoders.
//
// Backends contribute Providers. Init runs them exactly once before any
// run starts; afterwards the table is frozen and only read.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/user/framesampler/pkg/ports"
)

var (
	// ErrFrozen is returned when registering after the registry was frozen.
	ErrFrozen = errors.New("registry: frozen")
	// ErrDuplicate is returned when a codec already has a factory.
	ErrDuplicate = errors.New("registry: codec already registered")
)

// Factory creates unopened decoder sessions for one codec.
type Factory struct {
	Backend    string
	NewSession func() ports.DecoderSession
}

// Provider registers the decoders of one backend.
type Provider func(r *Registry) error

// Registry maps codec ids to decoder factories.
type Registry struct {
	mu        sync.RWMutex
	frozen    bool
	factories map[ports.CodecID]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[ports.CodecID]Factory)}
}

// Register adds a factory for codec.
func (r *Registry) Register(codec ports.CodecID, f Factory) error {
	if f.NewSession == nil {
		return fmt.Errorf("registry: nil factory for %s", codec)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrFrozen, codec)
	}
	if existing, ok := r.factories[codec]; ok {
		return fmt.Errorf("%w: %s by %s", ErrDuplicate, codec, existing.Backend)
	}
	r.factories[codec] = f
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the factory for codec.
func (r *Registry) Lookup(codec ports.CodecID) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[codec]
	return f, ok
}

// Codecs returns the registered codec ids in sorted order.
func (r *Registry) Codecs() []ports.CodecID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.CodecID, 0, len(r.factories))
	for c := range r.factories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	defaultRegistry = New()
	initOnce        sync.Once
	initErr         error
)

// Init runs providers against the process-wide registry and freezes it.
// Only the first call has any effect; later calls return the first result.
func Init(providers ...Provider) error {
	initOnce.Do(func() {
		for _, p := range providers {
			if err := p(defaultRegistry); err != nil {
				initErr = err
				break
			}
		}
		defaultRegistry.Freeze()
	})
	return initErr
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}
