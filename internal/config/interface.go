package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Source is the interface for a format-specific declaration reader.
type Source interface {
	// Extension is the file extension (including the dot) of units this
	// source understands.
	Extension() string

	// ReadManifest reads only the manifest of the unit at path.
	ReadManifest(ctx context.Context, path string) (*Manifest, error)

	// ReadUnit reads the full content of the unit at path.
	ReadUnit(ctx context.Context, path string) (*Unit, error)
}

// Converter is the interface for a format-specific data binding and type
// conversion implementation. It bridges evaluated raw values and the Go
// types of constructor parameters and members.
type Converter interface {
	// Decode converts val into the value pointed to by target.
	Decode(ctx context.Context, val cty.Value, target any) error

	// ToCtyValue converts a native Go value into its equivalent cty.Value.
	// Values without a natural cty representation are wrapped in a capsule.
	ToCtyValue(v any) (cty.Value, error)
}
