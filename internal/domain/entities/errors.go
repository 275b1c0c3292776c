package entities

import (
	"fmt"
	"strings"
)

// LoadError reports a malformed or inconsistent registry input.
// Nothing is written when a load fails.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load registry %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load registry %q: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CycleDetectedError reports a dependency cycle, naming its members in
// the order they form the cycle.
type CycleDetectedError struct {
	Members []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf(
		"dependency cycle detected: %s",
		strings.Join(e.Members, " -> "),
	)
}

// UnknownModuleError reports a version change naming a module that is
// not in the registry. The change is skipped; the run continues.
type UnknownModuleError struct {
	Name string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("version change references unknown module %q", e.Name)
}
