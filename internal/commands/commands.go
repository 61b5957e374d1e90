// Package commands holds the descriptor tables of every operating mode and
// the catalog the capability registry is built from.
package commands

import (
	"fmt"
	"sort"
	"sync"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/executor"
	"github.com/msto63/termcore/foundation/term/registry"
)

// Mode identifiers
const (
	ModeGeneralPurpose         = "general-purpose"
	ModeSecurityAssessment     = "security-assessment"
	ModeBinaryAnalysis         = "binary-analysis"
	ModeBusinessOperations     = "business-operations"
	ModeWebEngineering         = "web-engineering"
	ModeApplicationEngineering = "application-engineering"
	ModePhysicsResearch        = "physics-research"
)

// BaseKey addresses the base set in a disabled-commands overlay
const BaseKey = "base"

// ModeInfo describes one operating mode
type ModeInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var modeInfos = []ModeInfo{
	{ModeGeneralPurpose, "General Purpose", "Everyday utilities"},
	{ModeSecurityAssessment, "Security Assessment", "Authorized reconnaissance and hashing tools"},
	{ModeBinaryAnalysis, "Binary Analysis", "Byte level inspection"},
	{ModeBusinessOperations, "Business Operations", "Revenue, margin and forecasting"},
	{ModeWebEngineering, "Web Engineering", "Deployment and HTTP tooling"},
	{ModeApplicationEngineering, "Application Engineering", "Build, test and release helpers"},
	{ModePhysicsResearch, "Physics Research", "Constants, units and quick models"},
}

// Modes returns the identifiers of every known mode
func Modes() []string {
	names := make([]string, len(modeInfos))
	for i, m := range modeInfos {
		names[i] = m.Name
	}
	return names
}

// Describe returns the metadata of every known mode
func Describe() []ModeInfo {
	out := make([]ModeInfo, len(modeInfos))
	copy(out, modeInfos)
	return out
}

// IsMode reports whether mode is one of the known identifiers
func IsMode(mode string) bool {
	mode = registry.NormalizeMode(mode)
	for _, m := range modeInfos {
		if m.Name == mode {
			return true
		}
	}
	return false
}

// Catalog serves the base set and the per-mode tables. A disabled-commands
// overlay can hide entries; the key BaseKey hides base entries in all
// modes, a mode key hides entries of that mode's own table.
type Catalog struct {
	base  []command.Descriptor
	modes map[string][]command.Descriptor

	mu       sync.RWMutex
	disabled map[string]map[string]bool
}

// NewCatalog builds the catalog and validates every descriptor
func NewCatalog() (*Catalog, error) {
	return newCatalog(baseCommands(), map[string][]command.Descriptor{
		ModeGeneralPurpose:         generalCommands(),
		ModeSecurityAssessment:     securityCommands(),
		ModeBinaryAnalysis:         binaryCommands(),
		ModeBusinessOperations:     businessCommands(),
		ModeWebEngineering:         webCommands(),
		ModeApplicationEngineering: applicationCommands(),
		ModePhysicsResearch:        physicsCommands(),
	})
}

func newCatalog(base []command.Descriptor, modes map[string][]command.Descriptor) (*Catalog, error) {
	if err := validateTable(BaseKey, base); err != nil {
		return nil, err
	}
	for mode, table := range modes {
		if err := validateTable(mode, table); err != nil {
			return nil, err
		}
	}
	return &Catalog{base: base, modes: modes, disabled: map[string]map[string]bool{}}, nil
}

func validateTable(table string, descriptors []command.Descriptor) error {
	seen := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if err := command.Validate(d); err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
		if executor.IsReserved(d.Name()) {
			return fmt.Errorf("table %s: %q is a built-in command", table, d.Name())
		}
		if seen[d.Name()] {
			return fmt.Errorf("table %s: duplicate command %q", table, d.Name())
		}
		seen[d.Name()] = true
	}
	return nil
}

// Base implements registry.Catalog
func (c *Catalog) Base() []command.Descriptor {
	return c.filter(BaseKey, c.base)
}

// ForMode implements registry.Catalog
func (c *Catalog) ForMode(mode string) ([]command.Descriptor, bool) {
	table, ok := c.modes[mode]
	if !ok {
		return nil, false
	}
	return c.filter(mode, table), true
}

// Table returns the unfiltered table of mode, for listings
func (c *Catalog) Table(mode string) []command.Descriptor {
	return c.modes[registry.NormalizeMode(mode)]
}

// SetDisabled replaces the overlay and returns the keys whose contents
// changed, sorted. A change to BaseKey affects every mode.
func (c *Catalog) SetDisabled(disabled map[string][]string) []string {
	next := make(map[string]map[string]bool, len(disabled))
	for key, names := range disabled {
		key = registry.NormalizeMode(key)
		if len(names) == 0 {
			continue
		}
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		next[key] = set
	}

	c.mu.Lock()
	prev := c.disabled
	c.disabled = next
	c.mu.Unlock()

	var changed []string
	for key := range union(prev, next) {
		if !sameSet(prev[key], next[key]) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// Disabled returns the hidden names of key, sorted
func (c *Catalog) Disabled(key string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for n := range c.disabled[registry.NormalizeMode(key)] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) filter(key string, table []command.Descriptor) []command.Descriptor {
	c.mu.RLock()
	hidden := c.disabled[key]
	c.mu.RUnlock()

	if len(hidden) == 0 {
		return table
	}
	out := make([]command.Descriptor, 0, len(table))
	for _, d := range table {
		if !hidden[d.Name()] {
			out = append(out, d)
		}
	}
	return out
}

func union(a, b map[string]map[string]bool) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// newDef builds a descriptor for the tables in this package
func newDef(name, summary, usage string, examples []string, h command.Handler) *command.Definition {
	return &command.Definition{
		CommandName: name,
		Summary:     summary,
		UsageText:   usage,
		ExampleList: examples,
		Handler:     h,
	}
}
