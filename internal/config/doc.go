// Package config defines the format-agnostic declaration model of a plugin
// unit, along with the interfaces (Source, Converter) that a concrete
// declaration format implements.
//
// The loader only ever sees a Manifest during preload and a Unit during
// content load. Raw property and parameter values stay unevaluated
// hcl.Expressions until a construct is materialized. Concrete
// implementations, such as for HCL, live in separate packages.
package config
