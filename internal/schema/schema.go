// Package schema holds the gohcl decoding structs of the plugin declaration
// format. The hcl package translates them into the config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// ManifestFile decodes only the `plugin` block; everything else is left in
// Remain so preload never touches construct content.
type ManifestFile struct {
	Plugin *Plugin  `hcl:"plugin,block"`
	Remain hcl.Body `hcl:",remain"`
}

// UnitFile is the full top-level structure of a declaration file.
type UnitFile struct {
	Plugin     *Plugin      `hcl:"plugin,block"`
	Builders   []*Component `hcl:"builder,block"`
	Parsers    []*Component `hcl:"parser,block"`
	Extensions []*Extension `hcl:"extension,block"`
}

// Plugin is the manifest block.
type Plugin struct {
	Name         string      `hcl:"name,label"`
	Author       string      `hcl:"author,optional"`
	Version      string      `hcl:"version,optional"`
	Description  string      `hcl:"description,optional"`
	Hidden       bool        `hcl:"hidden,optional"`
	Dependencies []string    `hcl:"dependencies,optional"`
	Assemblies   []*Assembly `hcl:"assembly,block"`
}

// Assembly references a compiled-in module.
type Assembly struct {
	Name     string `hcl:"name,label"`
	Optional bool   `hcl:"optional,optional"`
}

// Component declares a builder (label = scheme) or parser (label = name).
// An omitted type defaults to the label.
type Component struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type,optional"`
}

// Extension groups constructs mounted under Path.
type Extension struct {
	Path       string       `hcl:"path,label"`
	Constructs []*Construct `hcl:"construct,block"`
}

// Construct is a construct declaration. Attributes not named below are
// member assignments and stay in Remain.
type Construct struct {
	Scheme     string       `hcl:"scheme,label"`
	Name       string       `hcl:"name,label"`
	Type       string       `hcl:"type,optional"`
	Position   string       `hcl:"position,optional"`
	Params     []*Param     `hcl:"param,block"`
	Behaviors  []*Behavior  `hcl:"behavior,block"`
	Constructs []*Construct `hcl:"construct,block"`
	Remain     hcl.Body     `hcl:",remain"`
}

// Param is an explicit constructor parameter.
type Param struct {
	Name  string         `hcl:"name,label"`
	Type  string         `hcl:"type,optional"`
	Value hcl.Expression `hcl:"value"`
}

// Behavior is a named property bag; all of its attributes are properties.
type Behavior struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}
