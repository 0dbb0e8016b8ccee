package plugins

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConstructMount is returned when a *Builtin is passed to Mount.
	ErrConstructMount = errors.New("constructs must be mounted with MountConstruct")
	// ErrDuplicateConstruct is returned when a node already holds a construct.
	ErrDuplicateConstruct = errors.New("node already holds a construct")
	// ErrNodeNotFound is returned by operations that require an existing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotMounted is returned when a construct is materialized before it is mounted.
	ErrNotMounted = errors.New("construct is not mounted")

	// ErrCircularConstruct is returned when a construct's build re-enters itself.
	ErrCircularConstruct = errors.New("circular construct")
	// ErrTargetTypeUnknown is returned when no target type can be determined.
	ErrTargetTypeUnknown = errors.New("cannot determine target type")
	// ErrTypeNotFound is returned for a type name missing from the catalog.
	ErrTypeNotFound = errors.New("type not found")
	// ErrNoConstructor is returned when no constructor of the target type can be satisfied.
	ErrNoConstructor = errors.New("no matching constructor")
	// ErrUnknownMember is returned when a property names a member the value does not have.
	ErrUnknownMember = errors.New("unknown member")

	// ErrBuilderNotFound is returned when the resolution chain has no builder of a name.
	ErrBuilderNotFound = errors.New("builder not found")
	// ErrParserNotFound is returned when the resolution chain has no parser of a name.
	ErrParserNotFound = errors.New("parser not found")

	// ErrDuplicatePlugin is returned when two sibling plugins share a name.
	ErrDuplicatePlugin = errors.New("duplicate plugin")
)

// ConstructionError wraps any failure to materialize a construct with the
// construct's identity and, when known, the member and raw value involved.
type ConstructionError struct {
	Path   string
	Plugin string
	Member string
	Raw    string
	Err    error
}

func (e *ConstructionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "construct %s (plugin %s)", e.Path, e.Plugin)
	if e.Member != "" {
		fmt.Fprintf(&sb, " member %q", e.Member)
	}
	if e.Raw != "" {
		fmt.Fprintf(&sb, " value %s", e.Raw)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// wrapConstruction wraps err for b unless it already carries a
// ConstructionError raised for the same construct.
func wrapConstruction(b *Builtin, member, raw string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstructionError
	if errors.As(err, &ce) && ce.Path == b.Path() {
		return err
	}
	return &ConstructionError{
		Path:   b.Path(),
		Plugin: b.Plugin().Name(),
		Member: member,
		Raw:    raw,
		Err:    err,
	}
}
