package plugins

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// parseFailure keeps the first parser error of an evaluation; HCL only
// reports it as diagnostic text.
type parseFailure struct {
	err error
}

// evalContext exposes every named parser as an HCL function of one string
// argument.
func evalContext(ctx context.Context, bc *BuildContext, names []string, raw string) (*hcl.EvalContext, *parseFailure, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	failure := &parseFailure{}

	funcs := make(map[string]function.Function, len(names))
	for _, name := range names {
		parser, err := bc.Plugin.ResolveParser(name)
		if err != nil {
			return nil, nil, err
		}
		pc := &ParseContext{
			Builtin: bc.Builtin,
			Node:    bc.Node,
			Plugin:  bc.Plugin,
			Tree:    bc.Tree,
			Engine:  bc.Engine,
			Mode:    bc.Mode,
			Raw:     raw,
		}
		funcs[name] = parserFunction(ctx, parser, pc, failure)
	}
	return &hcl.EvalContext{Functions: funcs}, failure, nil
}

func parserFunction(ctx context.Context, parser Parser, pc *ParseContext, failure *parseFailure) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "text", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, err := parser.Parse(ctx, pc, args[0].AsString())
			if err != nil {
				if failure.err == nil {
					failure.err = err
				}
				return cty.NilVal, err
			}
			return pc.Engine.Converter().ToCtyValue(v)
		},
	})
}
