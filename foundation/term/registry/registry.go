// File: registry.go
// Title: Capability Registry
// Description: Immutable per-mode command registry built by merging the
//              base descriptor set with a mode-specific overlay.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package registry

import (
	"sort"
	"strings"

	"github.com/msto63/termcore/foundation/term/command"
)

// Catalog supplies the descriptor sets a registry is built from.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Base returns the descriptors available in every mode
	Base() []command.Descriptor
	// ForMode returns the descriptors specific to mode and whether the
	// mode is known
	ForMode(mode string) ([]command.Descriptor, bool)
}

// Registry maps command names to descriptors for one mode
type Registry struct {
	mode        string
	known       bool
	descriptors map[string]command.Descriptor
	names       []string
}

// NormalizeMode trims and lower-cases a mode identifier
func NormalizeMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}

// Build resolves the registry for mode. Base descriptors are added first,
// then the mode-specific ones replace any base entry of the same name. An
// unknown mode yields the base set only.
func Build(mode string, catalog Catalog) *Registry {
	mode = NormalizeMode(mode)
	r := &Registry{
		mode:        mode,
		descriptors: make(map[string]command.Descriptor),
	}

	for _, d := range catalog.Base() {
		r.descriptors[d.Name()] = d
	}

	overlay, known := catalog.ForMode(mode)
	r.known = known
	for _, d := range overlay {
		r.descriptors[d.Name()] = d
	}

	r.names = make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r
}

// Mode returns the normalized mode the registry was built for
func (r *Registry) Mode() string {
	return r.mode
}

// KnownMode reports whether the catalog had a set for the mode
func (r *Registry) KnownMode() bool {
	return r.known
}

// Lookup returns the descriptor registered under name
func (r *Registry) Lookup(name string) (command.Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.descriptors[name]
	return ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Descriptors returns the descriptors sorted by name
func (r *Registry) Descriptors() []command.Descriptor {
	out := make([]command.Descriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.descriptors[name])
	}
	return out
}

// Len returns the number of registered commands
func (r *Registry) Len() int {
	return len(r.descriptors)
}
