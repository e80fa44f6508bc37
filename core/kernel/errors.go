package kernel

import (
	"fmt"
	"strings"
)

// MissingDependencyError is returned by Resolve when a module declares a
// dependency on a module that was never registered.
type MissingDependencyError struct {
	Module     string // module declaring the dependency
	Dependency string // name that could not be found
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("module %q depends on %q, which is not registered", e.Module, e.Dependency)
}

// CyclicDependencyError is returned by Resolve when the dependency graph
// contains a cycle. Modules lists every member of the detected cycle,
// sorted by name.
type CyclicDependencyError struct {
	Modules []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic module dependency involving [%s]", strings.Join(e.Modules, ", "))
}

// DuplicateModuleError is returned when two modules register under the
// same name.
type DuplicateModuleError struct {
	Module string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %q is already registered", e.Module)
}

// ModuleInitializationError wraps any failure raised while initializing or
// booting a module, annotated with the originating module and phase so boot
// failures are diagnosable from the log alone.
type ModuleInitializationError struct {
	Module string
	Phase  string // "initialize" or "boot"
	Err    error
}

func (e *ModuleInitializationError) Error() string {
	return fmt.Sprintf("module %q failed during %s: %v", e.Module, e.Phase, e.Err)
}

func (e *ModuleInitializationError) Unwrap() error { return e.Err }
