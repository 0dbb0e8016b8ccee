// Package registry provides the central "glue" between plugin declarations
// and compiled Go code.
//
// Compiled-in modules register builder factories, parser factories and
// type specs under the names that declaration files reference in their
// `builder`, `parser` and construct `type` attributes. A plugin's
// `assembly` entries name the modules it relies on.
//
// During application startup, the registry is populated and then validated
// so that broken type specs fail fast instead of at first materialization.
package registry
