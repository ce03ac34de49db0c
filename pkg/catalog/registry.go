// Package catalog holds the ordered collection of test definitions selected
// for a run, with tag-based indexing and a YAML loader.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aristanetworks/anta/pkg/model"
)

// Factory builds a validated test instance from a raw input mapping.
// Input validation happens here, once, at construction.
type Factory func(input map[string]interface{}) (model.Test, error)

// Registration describes one registered test: its group (the top-level key
// used in catalog files), name, category tags, and constructor.
type Registration struct {
	Group      string
	Name       string
	Categories []string
	Factory    Factory
}

// Registry maps test identifiers to their registrations. Tests register
// explicitly at import time; there is no reflective scanning.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Registration
	groups map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Registration),
		groups: make(map[string][]string),
	}
}

// Default is the process-wide registry populated by check packages.
var Default = NewRegistry()

// Register adds a test registration. Registering the same name twice is a
// programming error.
func (r *Registry) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[reg.Name]; ok {
		panic(fmt.Sprintf("catalog: duplicate test registration %q", reg.Name))
	}
	r.byName[reg.Name] = reg
	r.groups[reg.Group] = append(r.groups[reg.Group], reg.Name)
}

// Lookup returns the registration for a test name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byName[name]
	return reg, ok
}

// HasGroup reports whether any test is registered under the group.
func (r *Registry) HasGroup(group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group]) > 0
}

// Names returns all registered test names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
