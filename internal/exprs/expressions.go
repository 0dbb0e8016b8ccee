package exprs

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Analysis is what a raw value needs from its evaluation context.
type Analysis struct {
	// Parsers are the called function names, sorted and unique.
	Parsers []string
	// References are the variable traversals, e.g. "var.foo[0]", sorted
	// and unique.
	References []string
}

// Parseable reports whether the value calls at least one parser.
func (a Analysis) Parseable() bool { return len(a.Parsers) > 0 }

// Analyze walks expr once and reports its parser calls and variable
// references. A nil expression yields an empty Analysis.
func Analyze(expr hcl.Expression) Analysis {
	var a Analysis
	if expr == nil {
		return a
	}

	refs := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		refs[TraversalKey(traversal)] = struct{}{}
	}
	a.References = sortedKeys(refs)

	// Variables() does not report function calls.
	if syn, ok := expr.(hclsyntax.Expression); ok {
		calls := make(map[string]struct{})
		hclsyntax.VisitAll(syn, func(n hclsyntax.Node) hcl.Diagnostics {
			if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				calls[call.Name] = struct{}{}
			}
			return nil
		})
		a.Parsers = sortedKeys(calls)
	}
	return a
}

// ParserNames is Analyze(expr).Parsers.
func ParserNames(expr hcl.Expression) []string {
	return Analyze(expr).Parsers
}

// TraversalKey renders a traversal the way it is written in source.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
