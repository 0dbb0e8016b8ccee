package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Manifest is what preload learns about a unit without reading constructs.
type Manifest struct {
	Name         string
	Author       string
	Version      string
	Description  string
	Hidden       bool
	Dependencies []string
	Assemblies   []*Assembly
}

// Assembly references a compiled-in catalog module a unit relies on.
type Assembly struct {
	Name     string
	Optional bool
}

// Unit is the full content of one declaration source.
type Unit struct {
	Manifest *Manifest
	Builders []*Component
	Parsers  []*Component
	// Constructs are flattened depth-first: a nested construct follows its
	// parent and its Path already includes the parent's name.
	Constructs []*Construct
}

// Component binds a unit-local name (builder scheme or parser name) to a
// catalog type.
type Component struct {
	Name string
	Type string
}

// Construct is the format-agnostic representation of a `construct` block.
type Construct struct {
	Scheme   string
	Name     string
	Path     string
	Type     string
	Position string

	Params     []*Param
	Properties []*Property
	Behaviors  []*Behavior

	Range hcl.Range
}

// FullPath is the tree path the construct is mounted at.
func (c *Construct) FullPath() string {
	if c.Path == "" || c.Path == "/" {
		return "/" + c.Name
	}
	return c.Path + "/" + c.Name
}

// Param is an explicitly declared constructor parameter.
type Param struct {
	Name  string
	Type  string
	Value hcl.Expression
	Raw   string

	// Parsers are the parser names Value calls.
	Parsers []string
}

// Property is a member assignment. Raw is the source text of Value.
type Property struct {
	Name    string
	Value   hcl.Expression
	Raw     string
	Parsers []string
}

// Behavior is a named auxiliary property bag.
type Behavior struct {
	Name       string
	Properties []*Property
}

// Property returns the named property of the behavior, or nil.
func (b *Behavior) Property(name string) *Property {
	for _, p := range b.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}
