// Package loader discovers plugin units in a directory tree, orders them by
// their declared dependencies, and loads their content into the engine's
// plugin graph and node tree.
//
// Loading runs in two phases. Preload reads only manifests, builds the
// structural hierarchy (the first master unit of a directory becomes the
// parent of the units in its sub-directories) and validates dependencies.
// Content load then registers builders and parsers and mounts constructs,
// dependencies first. Unloading is symmetric.
package loader
