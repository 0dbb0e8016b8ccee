// Package app wires the catalog, the engine and the loader into a runnable
// application and owns its lifecycle.
package app
