package treepath

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Separator is the segment separator of tree paths.
const Separator = "/"

// ErrIllegalName is returned when a node name contains characters outside
// the allowed set or is one of the reserved navigation tokens.
var ErrIllegalName = errors.New("illegal node name")

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_.$-]+$`)

// ValidateName checks a single node name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrIllegalName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is a navigation token", ErrIllegalName, name)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrIllegalName, name)
	}
	return nil
}

// TokenKind classifies a parsed path token.
type TokenKind int

const (
	// Name is an ordinary child lookup.
	Name TokenKind = iota
	// Current is the `.` token.
	Current
	// Parent is the `..` token.
	Parent
)

// Token is a single step of a parsed path.
type Token struct {
	Kind TokenKind
	Name string
}

// Path is the parsed representation of a tree path.
type Path struct {
	Absolute bool
	Tokens   []Token
}

// Parse splits a raw path into tokens. Empty segments after the first are
// ignored, so `a//b` is the same as `a/b`. Names are validated.
func Parse(raw string) (*Path, error) {
	raw = strings.TrimSpace(raw)
	p := &Path{Absolute: strings.HasPrefix(raw, Separator)}

	for _, segment := range strings.Split(raw, Separator) {
		switch segment {
		case "":
			continue
		case ".":
			p.Tokens = append(p.Tokens, Token{Kind: Current, Name: segment})
		case "..":
			p.Tokens = append(p.Tokens, Token{Kind: Parent, Name: segment})
		default:
			if err := ValidateName(segment); err != nil {
				return nil, err
			}
			p.Tokens = append(p.Tokens, Token{Kind: Name, Name: segment})
		}
	}
	return p, nil
}

// Names parses an absolute path and returns its plain segment names after
// resolving `.` and `..`. Walking above the root is an error.
func Names(raw string) ([]string, error) {
	p, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(p.Tokens))
	for _, tok := range p.Tokens {
		switch tok.Kind {
		case Current:
		case Parent:
			if len(names) == 0 {
				return nil, fmt.Errorf("path %q walks above the root", raw)
			}
			names = names[:len(names)-1]
		default:
			names = append(names, tok.Name)
		}
	}
	return names, nil
}

// String serializes the path back into its canonical form.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	if p.Absolute {
		sb.WriteString(Separator)
	}
	for i, tok := range p.Tokens {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(tok.Name)
	}
	return sb.String()
}

// Join builds an absolute path from plain names.
func Join(names ...string) string {
	var parts []string
	for _, name := range names {
		name = strings.Trim(name, Separator)
		if name != "" {
			parts = append(parts, name)
		}
	}
	return Separator + strings.Join(parts, Separator)
}
