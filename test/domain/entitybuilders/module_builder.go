//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/releasebot/cascade/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ModuleBuilder helps create test modules with a fluent interface.
type ModuleBuilder struct {
	*testkit.BaseBuilder
	name         string
	version      string
	dependencies []string
	release      bool
}

// NewModuleBuilder creates a new module builder with sensible defaults.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "module-platform-test",
		version:     "1.0.0",
		release:     true,
	}
}

// WithName sets the module name.
func (b *ModuleBuilder) WithName(name string) *ModuleBuilder {
	b.name = name
	return b
}

// WithVersion sets the module version.
func (b *ModuleBuilder) WithVersion(version string) *ModuleBuilder {
	b.version = version
	return b
}

// WithDependencies sets the declared dependency names.
func (b *ModuleBuilder) WithDependencies(deps ...string) *ModuleBuilder {
	b.dependencies = deps
	return b
}

// WithRelease sets the release flag.
func (b *ModuleBuilder) WithRelease(release bool) *ModuleBuilder {
	b.release = release
	return b
}

// Build creates the module (satisfies testkit.Builder interface).
func (b *ModuleBuilder) Build() interface{} {
	return b.BuildModule()
}

// BuildModule creates the module with a concrete return type.
func (b *ModuleBuilder) BuildModule() entities.Module {
	return entities.Module{
		Name:         b.name,
		Version:      b.version,
		Dependencies: b.dependencies,
		Release:      b.release,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ModuleBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "module-platform-test"
	b.version = "1.0.0"
	b.dependencies = nil
	b.release = true
	return b
}

// Clone creates a deep copy of the ModuleBuilder.
func (b *ModuleBuilder) Clone() testkit.Builder {
	deps := append([]string(nil), b.dependencies...)
	return &ModuleBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		version:      b.version,
		dependencies: deps,
		release:      b.release,
	}
}
