package entities

// PropagationResult is the outcome of one propagation run.
type PropagationResult struct {
	// Updates lists every module that moves to a new version, in
	// topological order (dependencies before dependents).
	Updates []ModuleUpdate
	// States records the terminal state of every registry module.
	States map[string]ModuleState
	// Skipped lists changes that referenced unknown modules.
	Skipped []UnknownModuleError
}

// Propagate applies a set of external version changes to the graph and
// computes the transitive bumps they require. Every module is visited
// exactly once, in topological order, so by the time a module is
// considered all of its dependencies carry their final versions; a
// single pass therefore reaches the fixed point.
//
// The receiver's registry is not modified: the result holds the data
// and the caller decides whether to persist it via Registry.Apply.
func (g *DependencyGraph) Propagate(changes []VersionChange, policy BumpPolicy) (*PropagationResult, error) {
	result := &PropagationResult{
		States: make(map[string]ModuleState, g.registry.Len()),
	}
	for _, name := range g.registry.Names() {
		result.States[name] = StatePending
	}

	// Direct changes, keyed by module. A change whose version equals the
	// recorded one is already applied and triggers nothing (idempotent
	// re-runs produce no diff).
	direct := make(map[string]VersionChange)
	for _, change := range changes {
		module := g.registry.Get(change.Name)
		if module == nil {
			result.Skipped = append(result.Skipped, UnknownModuleError{Name: change.Name})
			continue
		}
		if change.NewVersion == module.Version {
			continue
		}
		direct[change.Name] = change
	}

	updated := make(map[string]string, len(direct)) // name -> new version

	for _, name := range g.order {
		module := g.registry.Get(name)
		result.States[name] = StateVisited

		if change, ok := direct[name]; ok {
			updated[name] = change.NewVersion
			result.Updates = append(result.Updates, ModuleUpdate{
				Name:       name,
				OldVersion: module.Version,
				NewVersion: change.NewVersion,
			})
			result.States[name] = StateUpdated
			continue
		}

		if !module.Release || !g.dependsOnUpdated(module, updated) {
			result.States[name] = StateUnchanged
			continue
		}

		next, err := NextVersion(module.Version, policy)
		if err != nil {
			return nil, err
		}
		updated[name] = next
		result.Updates = append(result.Updates, ModuleUpdate{
			Name:       name,
			OldVersion: module.Version,
			NewVersion: next,
		})
		result.States[name] = StateUpdated
	}

	return result, nil
}

func (g *DependencyGraph) dependsOnUpdated(module *Module, updated map[string]string) bool {
	for _, dep := range module.Dependencies {
		if _, ok := updated[dep]; ok {
			return true
		}
	}
	return false
}

// Apply writes the computed updates back onto the registry's modules.
// Updates naming modules outside the registry are ignored.
func (r *Registry) Apply(updates []ModuleUpdate) {
	for _, update := range updates {
		if module := r.Get(update.Name); module != nil {
			module.Version = update.NewVersion
		}
	}
}
