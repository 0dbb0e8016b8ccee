package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrDependencyNotFound is returned when a declared dependency names no plugin.
	ErrDependencyNotFound = errors.New("dependency not found")
	// ErrCircularDependency is returned when dependencies form a cycle.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrAssemblyNotFound is returned for a required assembly the catalog lacks.
	ErrAssemblyNotFound = errors.New("assembly not found")
	// ErrDependencyFailed is returned for a plugin whose dependency failed to load.
	ErrDependencyFailed = errors.New("dependency failed to load")
)

// PluginError is a failure attributed to one plugin unit.
type PluginError struct {
	Plugin string
	Path   string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %q (%s): %v", e.Plugin, e.Path, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}
