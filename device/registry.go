// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Registry names of the bundled backends.
const (
	BackendWGL = "wgl"
	BackendGLX = "glx"
	BackendEGL = "egl"
	BackendSDL = "sdl"
)

// Standard priorities, higher is preferred.
const (
	PriorityNative   = 100
	PriorityPortable = 50
	PriorityFallback = 10
)

// BackendFactory opens a backend.
type BackendFactory func(cfg Config) (Backend, error)

// RegistryEntry is a registered backend.
type RegistryEntry struct {
	Name     string
	Priority int
	Factory  BackendFactory

	// Available probes the platform, e.g. for a running X server.
	Available func() bool
}

// Registry keeps the backends known to the process. Backend packages
// register themselves from init:
//
//	func init() {
//	    device.Register(device.BackendGLX, device.PriorityNative, open, available)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
// Most code should use the global one through Register and Select.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a backend to the global registry.
func Register(name string, priority int, factory BackendFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// Registered returns the names of all registered backends, preferred first.
func Registered() []string {
	return globalRegistry.Registered()
}

// Available returns the names of backends usable on this platform, preferred first.
func Available() []string {
	return globalRegistry.Available()
}

// Select opens the backend cfg asks for on the global registry.
func Select(cfg Config) (Backend, error) {
	return globalRegistry.Select(cfg)
}

// Register adds a backend to r. A nil available means always available.
// Registering an existing name replaces the entry.
func (r *Registry) Register(name string, priority int, factory BackendFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from r.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Registered returns all backend names of r, preferred first.
func (r *Registry) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Available returns the available backend names of r, preferred first.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Select opens a backend. cfg.RequireEGL forces EGL and rejects any other
// name in cfg.Backend, a backend named in cfg.Backend is used as is,
// otherwise the available backends are tried in priority order and the
// first one that opens wins.
func (r *Registry) Select(cfg Config) (Backend, error) {
	log := cfg.Log()

	forced, err := cfg.forcedBackend()
	if err != nil {
		return nil, err
	}
	if forced != "" {
		return r.open(forced, cfg)
	}

	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range names {
		b, err := r.open(name, cfg)
		if err == nil {
			return b, nil
		}
		log.WithError(err).WithField("backend", name).Debug("Backend failed to open, trying next")
		lastErr = err
	}
	return nil, lastErr
}

func (r *Registry) open(name string, cfg Config) (Backend, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}

	b, err := entry.Factory(cfg)
	if err != nil {
		return nil, err
	}
	cfg.Log().WithFields(logrus.Fields{
		"backend": name,
		"apis":    strings.Join(b.APIs(), ","),
	}).Info("Backend selected")
	return b, nil
}

// sortedNames must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b *RegistryEntry) int {
		if a.Priority != b.Priority {
			return b.Priority - a.Priority
		}
		return strings.Compare(a.Name, b.Name)
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
