package plugins

import (
	"context"

	"github.com/specialistvlad/plugtree/internal/services"
)

// Builder turns a construct into a live object.
type Builder interface {
	Build(ctx context.Context, bc *BuildContext) (any, error)
}

// Destroyer is implemented by builders that release what they built when
// the owning plugin unloads.
type Destroyer interface {
	Destroy(ctx context.Context, bc *BuildContext, value any) error
}

// Publisher is implemented by builders with side effects outside the
// built object, such as service registration. Publish runs only for Auto
// builds that completed, children included, right before the value is
// cached. Always builds are never published.
type Publisher interface {
	Publish(ctx context.Context, bc *BuildContext, value any) error
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, bc *BuildContext) (any, error)

// Build implements Builder.
func (f BuilderFunc) Build(ctx context.Context, bc *BuildContext) (any, error) {
	return f(ctx, bc)
}

// Parser turns the text argument of a parser call into a value.
type Parser interface {
	Parse(ctx context.Context, pc *ParseContext, text string) (any, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, pc *ParseContext, text string) (any, error)

// Parse implements Parser.
func (f ParserFunc) Parse(ctx context.Context, pc *ParseContext, text string) (any, error) {
	return f(ctx, pc, text)
}

// BuildContext is everything a builder may consult.
type BuildContext struct {
	Builtin *Builtin
	Node    *Node
	Plugin  *Plugin
	Tree    *Tree
	Engine  *Engine
	Mode    ObtainMode
	// Owner is the nearest non-empty ancestor of Node; it is never built
	// on behalf of this construct.
	Owner *Node
	// Scope is the nearest materialized module boundary, or the application.
	Scope Scope
}

// Locator returns the service locator of the build's scope, or nil.
func (bc *BuildContext) Locator() services.Locator {
	if bc.Scope == nil {
		return nil
	}
	return bc.Scope.Services()
}

// ParseContext is everything a parser may consult. Builtin and Node are
// the construct whose value is being parsed.
type ParseContext struct {
	Builtin *Builtin
	Node    *Node
	Plugin  *Plugin
	Tree    *Tree
	Engine  *Engine
	Mode    ObtainMode
	// Raw is the source text of the whole raw value.
	Raw string
}
