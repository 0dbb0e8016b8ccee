package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/plugtree/internal/plugins"
)

// WriteTree prints the node tree, one node per line, without
// materializing anything.
func WriteTree(w io.Writer, tree *plugins.Tree) error {
	var err error
	tree.Walk(func(n *plugins.Node, depth int) bool {
		if err != nil {
			return false
		}
		name := n.Name()
		if depth == 0 {
			name = "/"
		}
		line := strings.Repeat("  ", depth) + name
		if b := n.Builtin(); b != nil {
			line += fmt.Sprintf(" [%s plugin=%s", b.Scheme(), b.Plugin().Name())
			if b.TypeName() != "" {
				line += " type=" + b.TypeName()
			}
			if b.Built() {
				line += " built"
			}
			line += "]"
		} else if v := n.Peek(); v != nil {
			line += fmt.Sprintf(" (%T)", v)
		}
		_, err = fmt.Fprintln(w, line)
		return err == nil
	})
	return err
}

// describe formats a materialized value for output.
func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%+v", v)
}
