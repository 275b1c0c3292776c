package entities

import "sort"

// DependencyGraph is the directed graph over a registry's modules.
// An edge A -> B means B depends on A, so updates flow from A to B.
// Construction computes the topological order, per-module levels, and
// the pruned immediate-dependent sets; a cyclic registry is rejected
// with a CycleDetectedError.
type DependencyGraph struct {
	registry   *Registry
	dependents map[string][]string // forward edges: module -> modules depending on it
	order      []string            // topological order, dependencies first
	closure    map[string]map[string]bool // transitive dependency sets
}

// NewDependencyGraph builds the graph for the given registry.
func NewDependencyGraph(registry *Registry) (*DependencyGraph, error) {
	g := &DependencyGraph{
		registry:   registry,
		dependents: make(map[string][]string),
		closure:    make(map[string]map[string]bool),
	}

	for _, name := range registry.Names() {
		for _, dep := range registry.Get(name).Dependencies {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	for dep := range g.dependents {
		sort.Strings(g.dependents[dep])
	}

	order, err := g.sortTopologically()
	if err != nil {
		return nil, err
	}
	g.order = order

	g.computeClosure()
	g.computeLevels()
	g.computeImmediateDependents()

	return g, nil
}

// Registry returns the registry this graph was built from, with levels
// and dependents filled in.
func (g *DependencyGraph) Registry() *Registry { return g.registry }

// TopologicalOrder returns the module names with every dependency
// preceding its dependents. Ties break by name, so the order is
// deterministic across runs.
func (g *DependencyGraph) TopologicalOrder() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// TransitiveDependents returns every module that directly or indirectly
// depends on the named module, in topological order.
func (g *DependencyGraph) TransitiveDependents(name string) []string {
	var out []string
	for _, candidate := range g.order {
		if g.closure[candidate][name] {
			out = append(out, candidate)
		}
	}
	return out
}

// sortTopologically runs Kahn's algorithm. The ready set is kept sorted
// so the resulting order is stable.
func (g *DependencyGraph) sortTopologically() ([]string, error) {
	inDegree := make(map[string]int, g.registry.Len())
	for _, name := range g.registry.Names() {
		inDegree[name] = len(g.registry.Get(name).Dependencies)
	}

	var ready []string
	for _, name := range g.registry.Names() {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, g.registry.Len())
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var unlocked []string
		for _, dependent := range g.dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sort.Strings(ready)
		}
	}

	if len(order) < g.registry.Len() {
		return nil, &CycleDetectedError{Members: g.findCycle(inDegree)}
	}
	return order, nil
}

// findCycle walks dependency edges among the modules Kahn's algorithm
// could not order until a node repeats, then returns the loop members.
func (g *DependencyGraph) findCycle(inDegree map[string]int) []string {
	remaining := make(map[string]bool)
	var start string
	for _, name := range g.registry.Names() {
		if inDegree[name] > 0 {
			remaining[name] = true
			if start == "" {
				start = name
			}
		}
	}

	visited := make(map[string]int) // name -> position in path
	var path []string
	current := start
	for {
		if pos, seen := visited[current]; seen {
			return path[pos:]
		}
		visited[current] = len(path)
		path = append(path, current)

		// Follow any dependency edge that stays inside the cyclic remainder.
		next := ""
		for _, dep := range g.registry.Get(current).Dependencies {
			if remaining[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		current = next
	}
}

// computeClosure fills the transitive dependency set of every module,
// walking the topological order so each dependency's closure is final
// before its dependents read it.
func (g *DependencyGraph) computeClosure() {
	for _, name := range g.order {
		set := make(map[string]bool)
		for _, dep := range g.registry.Get(name).Dependencies {
			set[dep] = true
			for ancestor := range g.closure[dep] {
				set[ancestor] = true
			}
		}
		g.closure[name] = set
	}
}

// computeLevels assigns release levels: a module with no dependencies is
// level 1; otherwise its level is one more than its deepest dependency.
// This matches a longest-path layering, so every module sorts after all
// of its transitive dependencies.
func (g *DependencyGraph) computeLevels() {
	for _, name := range g.order {
		module := g.registry.Get(name)
		level := 1
		for _, dep := range module.Dependencies {
			if depLevel := g.registry.Get(dep).Level; depLevel >= level {
				level = depLevel + 1
			}
		}
		module.Level = level
	}
}

// computeImmediateDependents records, per module, its dependents pruned
// of any module that is also reachable through a longer dependency path.
// If C depends on both A and B while B depends on A, then C is not an
// immediate dependent of A: the A -> B -> C path subsumes the direct edge.
func (g *DependencyGraph) computeImmediateDependents() {
	for _, name := range g.registry.Names() {
		module := g.registry.Get(name)
		module.Dependents = nil

		for _, dependent := range g.dependents[name] {
			if g.hasLongerPath(name, dependent) {
				continue
			}
			module.Dependents = append(module.Dependents, dependent)
		}
	}
}

// hasLongerPath reports whether dependent reaches name through one of
// its other dependencies.
func (g *DependencyGraph) hasLongerPath(name, dependent string) bool {
	for _, sibling := range g.registry.Get(dependent).Dependencies {
		if sibling == name {
			continue
		}
		if g.closure[sibling][name] {
			return true
		}
	}
	return false
}
