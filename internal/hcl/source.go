package hcl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/plugtree/internal/config"
	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/exprs"
	"github.com/specialistvlad/plugtree/internal/fsutil"
	"github.com/specialistvlad/plugtree/internal/schema"
)

// Extension is the file extension of HCL plugin units.
const Extension = ".hcl"

// ErrVariableReference is returned for raw values that reference variables.
var ErrVariableReference = errors.New("raw values cannot reference variables")

// Source is the HCL implementation of config.Source.
type Source struct{}

// NewSource creates a new HCL declaration source.
func NewSource() *Source {
	return &Source{}
}

// Extension implements config.Source.
func (s *Source) Extension() string {
	return Extension
}

// ReadManifest implements config.Source. A file without a `plugin` block
// yields a manifest named after the file.
func (s *Source) ReadManifest(ctx context.Context, path string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	file, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	var root schema.ManifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest of %s: %w", path, diags)
	}

	m := translateManifest(root.Plugin, path)
	logger.Debug("Read plugin manifest.", "plugin", m.Name, "path", path, "dependencies", m.Dependencies)
	return m, nil
}

// ReadUnit implements config.Source.
func (s *Source) ReadUnit(ctx context.Context, path string) (*config.Unit, error) {
	logger := ctxlog.FromContext(ctx)

	file, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	var root schema.UnitFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", path, diags)
	}

	unit := &config.Unit{
		Manifest: translateManifest(root.Plugin, path),
	}
	for _, b := range root.Builders {
		unit.Builders = append(unit.Builders, translateComponent(b))
	}
	for _, p := range root.Parsers {
		unit.Parsers = append(unit.Parsers, translateComponent(p))
	}

	t := &translator{src: file.Bytes}
	for _, ext := range root.Extensions {
		for _, c := range ext.Constructs {
			if err := t.construct(&unit.Constructs, ext.Path, c); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	logger.Debug("Read plugin unit.",
		"plugin", unit.Manifest.Name,
		"builders", len(unit.Builders),
		"parsers", len(unit.Parsers),
		"constructs", len(unit.Constructs),
	)
	return unit, nil
}

func parseFile(path string) (*hcl.File, error) {
	// A fresh parser per read: hclparse caches by filename and a unit may be
	// re-read after an unload.
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return file, nil
}

func translateManifest(p *schema.Plugin, path string) *config.Manifest {
	if p == nil {
		return &config.Manifest{Name: fsutil.StemName(path)}
	}
	m := &config.Manifest{
		Name:         p.Name,
		Author:       p.Author,
		Version:      p.Version,
		Description:  p.Description,
		Hidden:       p.Hidden,
		Dependencies: p.Dependencies,
	}
	for _, a := range p.Assemblies {
		m.Assemblies = append(m.Assemblies, &config.Assembly{Name: a.Name, Optional: a.Optional})
	}
	return m
}

func translateComponent(c *schema.Component) *config.Component {
	typ := c.Type
	if typ == "" {
		typ = c.Name
	}
	return &config.Component{Name: c.Name, Type: typ}
}

// translator converts construct blocks, slicing raw text out of the file.
type translator struct {
	src []byte
}

func (t *translator) construct(out *[]*config.Construct, path string, c *schema.Construct) error {
	attrs, diags := bodyAttributes(c.Remain, constructBody)
	if diags.HasErrors() {
		return fmt.Errorf("construct %q: %w", c.Name, diags)
	}
	props, err := t.properties(attrs)
	if err != nil {
		return fmt.Errorf("construct %q: %w", c.Name, err)
	}

	con := &config.Construct{
		Scheme:     c.Scheme,
		Name:       c.Name,
		Path:       path,
		Type:       c.Type,
		Position:   c.Position,
		Properties: props,
		Range:      c.Remain.MissingItemRange(),
	}
	for _, p := range c.Params {
		a, err := analyze(p.Value)
		if err != nil {
			return fmt.Errorf("param %q of construct %q: %w", p.Name, c.Name, err)
		}
		con.Params = append(con.Params, &config.Param{
			Name:    p.Name,
			Type:    p.Type,
			Value:   p.Value,
			Raw:     t.raw(p.Value),
			Parsers: a.Parsers,
		})
	}
	for _, b := range c.Behaviors {
		battrs, diags := bodyAttributes(b.Remain, behaviorBody)
		if diags.HasErrors() {
			return fmt.Errorf("behavior %q of construct %q: %w", b.Name, c.Name, diags)
		}
		bprops, err := t.properties(battrs)
		if err != nil {
			return fmt.Errorf("behavior %q of construct %q: %w", b.Name, c.Name, err)
		}
		con.Behaviors = append(con.Behaviors, &config.Behavior{
			Name:       b.Name,
			Properties: bprops,
		})
	}

	*out = append(*out, con)

	for _, child := range c.Constructs {
		if err := t.construct(out, con.FullPath(), child); err != nil {
			return err
		}
	}
	return nil
}

// remainBody names what gohcl already decoded out of a remain body.
type remainBody struct {
	attributes []string
	blocks     []string
}

var (
	constructBody = remainBody{
		attributes: []string{"type", "position"},
		blocks:     []string{"param", "behavior", "construct"},
	}
	behaviorBody = remainBody{}
)

// bodyAttributes returns the attributes left in a remain body. Blocks
// decoded by gohcl stay in a syntax body and JustAttributes rejects them,
// so syntax bodies are read directly. Blocks of any other type are errors.
func bodyAttributes(body hcl.Body, decoded remainBody) (hcl.Attributes, hcl.Diagnostics) {
	syn, ok := body.(*hclsyntax.Body)
	if !ok {
		attrs, diags := body.JustAttributes()
		for _, name := range decoded.attributes {
			delete(attrs, name)
		}
		return attrs, diags
	}

	var diags hcl.Diagnostics
	for _, blk := range syn.Blocks {
		if !slices.Contains(decoded.blocks, blk.Type) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected block",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here.", blk.Type),
				Subject:  blk.TypeRange.Ptr(),
			})
		}
	}

	attrs := make(hcl.Attributes, len(syn.Attributes))
	for name, a := range syn.Attributes {
		if slices.Contains(decoded.attributes, name) {
			continue
		}
		attrs[name] = a.AsHCLAttribute()
	}
	return attrs, diags
}

// properties returns attributes in declaration order.
func (t *translator) properties(attrs hcl.Attributes) ([]*config.Property, error) {
	list := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Range.Start.Byte < list[j].Range.Start.Byte
	})

	props := make([]*config.Property, 0, len(list))
	for _, a := range list {
		an, err := analyze(a.Expr)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", a.Name, err)
		}
		props = append(props, &config.Property{
			Name:    a.Name,
			Value:   a.Expr,
			Raw:     t.raw(a.Expr),
			Parsers: an.Parsers,
		})
	}
	return props, nil
}

// analyze rejects raw values that reference variables; evaluation only
// provides parser functions.
func analyze(expr hcl.Expression) (exprs.Analysis, error) {
	a := exprs.Analyze(expr)
	if len(a.References) > 0 {
		return a, fmt.Errorf("%w at %s: %s", ErrVariableReference, expr.Range(), strings.Join(a.References, ", "))
	}
	return a, nil
}

func (t *translator) raw(expr hcl.Expression) string {
	if expr == nil {
		return ""
	}
	r := expr.Range()
	if r.Start.Byte < 0 || r.End.Byte > len(t.src) || r.Start.Byte > r.End.Byte {
		return ""
	}
	return string(t.src[r.Start.Byte:r.End.Byte])
}
