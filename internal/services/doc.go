// Package services provides the ambient service locator consumed by the
// materialization engine.
//
// A Container resolves services by Go type (first registered assignable
// value wins) or by name, falls back to an optional parent container, and
// can inject resolved services into struct fields tagged `inject`. The
// application owns the root container; objects that act as module
// boundaries expose their own container chained to the root.
package services
