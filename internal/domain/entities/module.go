package entities

import (
	"fmt"
	"sort"
	"strings"

	msemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// Module represents a versioned unit of software tracked by the registry.
type Module struct {
	Name         string   // Unique module identifier
	Version      string   // Currently recorded semantic version
	Dependencies []string // Names of modules this module depends on
	Dependents   []string // Names of modules depending on this one (computed)
	Level        int      // Release ordering level (computed, roots are 1)
	Release      bool     // Whether automatic version bumps apply
}

// VersionChange records an externally observed version bump for one module.
type VersionChange struct {
	Name       string
	OldVersion string
	NewVersion string
	Origin     string // "flag", "git", "release" — informational only
}

// ModuleUpdate is a single computed bump produced by propagation.
type ModuleUpdate struct {
	Name       string
	OldVersion string
	NewVersion string
}

// ModuleState tracks where a module is in a propagation run.
type ModuleState int

const (
	StatePending ModuleState = iota
	StateVisited
	StateUpdated
	StateUnchanged
)

func (s ModuleState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateVisited:
		return "visited"
	case StateUpdated:
		return "updated"
	case StateUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// BumpPolicy selects which semantic version component a propagated
// update increments.
type BumpPolicy string

const (
	BumpPatch BumpPolicy = "patch"
	BumpMinor BumpPolicy = "minor"
)

// ParseBumpPolicy validates a policy name from config or flags.
func ParseBumpPolicy(raw string) (BumpPolicy, error) {
	switch BumpPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case BumpPatch, "":
		return BumpPatch, nil
	case BumpMinor:
		return BumpMinor, nil
	default:
		return "", fmt.Errorf("unknown bump policy %q (expected patch or minor)", raw)
	}
}

// NextVersion computes the version a module moves to when one of its
// dependencies changed, according to the policy. Pre-release and build
// metadata are dropped on bump, matching release-train behaviour.
func NextVersion(current string, policy BumpPolicy) (string, error) {
	parsed, err := msemver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return "", fmt.Errorf("invalid semantic version %q: %w", current, err)
	}

	var next msemver.Version
	switch policy {
	case BumpMinor:
		next = parsed.IncMinor()
	case BumpPatch:
		next = parsed.IncPatch()
	default:
		return "", fmt.Errorf("unknown bump policy %q", policy)
	}

	result := next.String()
	if strings.HasPrefix(current, "v") {
		result = "v" + result
	}
	return result, nil
}

// IsNewerVersion compares two version strings and returns true if
// candidate is strictly newer than current. Both are normalized to the
// "v" prefix that x/mod/semver expects; non-semver strings fall back to
// plain string comparison.
func IsNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	cand := normalizeVersion(candidate)

	if semver.IsValid(cur) && semver.IsValid(cand) {
		return semver.Compare(cand, cur) > 0
	}

	return candidate > current
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// Registry is the in-memory set of tracked modules, loaded fresh each run.
type Registry struct {
	modules map[string]*Module
	names   []string // insertion-independent, name-sorted
}

// NewRegistry validates the module set and indexes it by name.
// It rejects duplicate module names, empty names, invalid versions,
// and dependency references to modules that are not in the set.
func NewRegistry(modules []Module) (*Registry, error) {
	index := make(map[string]*Module, len(modules))
	names := make([]string, 0, len(modules))

	for i := range modules {
		m := modules[i]
		if m.Name == "" {
			return nil, fmt.Errorf("module at position %d has an empty name", i)
		}
		if _, exists := index[m.Name]; exists {
			return nil, fmt.Errorf("duplicate module %q", m.Name)
		}
		if !semver.IsValid(normalizeVersion(m.Version)) {
			return nil, fmt.Errorf("module %q has invalid version %q", m.Name, m.Version)
		}

		copied := m
		copied.Dependents = nil // recomputed by the graph
		index[m.Name] = &copied
		names = append(names, m.Name)
	}

	for _, name := range names {
		for _, dep := range index[name].Dependencies {
			if dep == name {
				return nil, fmt.Errorf("module %q depends on itself", name)
			}
			if _, known := index[dep]; !known {
				return nil, fmt.Errorf("module %q declares unknown dependency %q", name, dep)
			}
		}
	}

	sort.Strings(names)
	return &Registry{modules: index, names: names}, nil
}

// Get returns the module with the given name, or nil.
func (r *Registry) Get(name string) *Module {
	return r.modules[name]
}

// Names returns every module name in lexicographic order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Modules returns the modules sorted by level, then name. Before levels
// are computed every level is zero and the order is purely by name.
func (r *Registry) Modules() []Module {
	out := make([]Module, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, *r.modules[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of tracked modules.
func (r *Registry) Len() int {
	return len(r.names)
}
