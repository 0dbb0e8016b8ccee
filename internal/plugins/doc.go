// Package plugins implements the plugin tree, the plugin graph and the
// builtin materialization engine.
//
// # Tree
//
// A Tree is a path-addressed namespace of Nodes. Each node holds nothing,
// a construct definition (*Builtin), or an arbitrary object. Constructs are
// materialized lazily through UnwrapValue according to an ObtainMode:
//
//   - Never returns the cached value only and never builds.
//   - Auto builds once per construct, caches the result, and appends it to
//     the nearest materialized owner.
//   - Always builds a fresh instance every time and never touches the cache.
//
// Reads of node values are lock-free; structural changes are serialized by
// a tree-wide mutex.
//
// # Materialization
//
// A construct is built by the Builder its scheme resolves to. The default
// algorithm (BuildObject) infers the target type from the owner when none
// is declared, picks a constructor from the type's TypeSpec, assigns
// properties through the Converter and parsers, and injects services from
// the nearest Scope.
//
// # Resolution chain
//
// Builders and parsers are per-plugin registries. A lookup starting at a
// plugin searches its own registry, then its dependencies in declaration
// order, then its slaves, then its structural parent.
package plugins
