// File: doc.go
// Title: Capability Registry Package Documentation
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14

/*
Package registry resolves the set of commands available in a mode.

A Registry is an immutable name to descriptor map for one mode, built from a
Catalog by laying the mode-specific descriptors over the base ones. Mode
entries win name collisions. A mode the catalog does not know resolves to
the base set.

Cache memoizes one Registry per mode for the lifetime of the process.
Concurrent first resolutions of a mode share a single build. Invalidate and
InvalidateAll drop memoized registries when the catalog contents change,
for example after a configuration reload.

	cache := registry.NewCache(catalog, registry.CacheOptions{Logger: logger})
	reg := cache.Resolve(ctx, "security-assessment")
	if d, ok := reg.Lookup("scan"); ok {
		...
	}
*/
package registry
