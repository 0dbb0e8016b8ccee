// Package dag validates the plugin dependency graph before any plugin
// content is loaded.
//
// Vertices are plugin names and an edge from -> to means "to depends on
// from". The graph keeps insertion order so that cycle reports and the
// topological order are deterministic for a given directory layout.
package dag
