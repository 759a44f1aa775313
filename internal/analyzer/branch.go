package analyzer

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/staticeval"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
)

// Refinements maps a name to the type it should carry within a branch.
type Refinements map[string]typesystem.Type

// BranchRefinements computes the then/else type refinements for a
// branch test: every free Name in test whose
// declared type is Maybe(T) is probed twice, once forced to None and
// once forced to T, and the branches where the probe's static outcome
// is decisive get a narrowed type.
func (v *Visitor) BranchRefinements(test ast.Expression, ectx *context.ExtendedContext) (thenR, elseR Refinements) {
	thenR, elseR = Refinements{}, Refinements{}
	for _, name := range freeNames(test) {
		sym, ok := ectx.Get(name)
		if !ok {
			continue
		}
		maybe, ok := sym.EffectiveType().(typesystem.Maybe)
		if !ok {
			continue
		}
		inner := maybe.Inner

		noneOutcome := v.probeWithBinding(test, name, typesystem.NoneType{}, values.None{}, ectx)
		if b, ok := asStaticBool(noneOutcome); ok {
			if !b {
				thenR[name] = inner
			} else {
				elseR[name] = inner
			}
		}

		innerOutcome := v.probeWithBinding(test, name, inner, values.Unknown{}, ectx)
		if b, ok := asStaticBool(innerOutcome); ok {
			if !b {
				thenR[name] = typesystem.NoneType{}
			} else {
				elseR[name] = typesystem.NoneType{}
			}
		}
	}
	return thenR, elseR
}

// probeWithBinding statically evaluates test under ectx with name
// temporarily rebound to (t, val), without disturbing the real
// context.
func (v *Visitor) probeWithBinding(test ast.Expression, name string, t typesystem.Type, val values.Value, ectx *context.ExtendedContext) values.Value {
	overlay := ectx.Base().Overlay()
	overlay.Add(typesystem.NewSymbol(name, t))
	if sym, ok := overlay.Get(name); ok {
		sym.Value = val
	}
	return staticeval.Evaluate(test, overlay)
}

func asStaticBool(v values.Value) (bool, bool) {
	b, ok := v.(values.Bool)
	if !ok {
		return false, false
	}
	return bool(b), true
}

// freeNames collects every distinct Name identifier occurring in e.
func freeNames(e ast.Expression) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(ast.Expression)
	walk = func(n ast.Expression) {
		if n == nil {
			return
		}
		switch x := n.(type) {
		case *ast.Name:
			if !seen[x.Id] {
				seen[x.Id] = true
				out = append(out, x.Id)
			}
		case *ast.BoolOp:
			for _, v := range x.Values {
				walk(v)
			}
		case *ast.UnaryOp:
			walk(x.Operand)
		case *ast.BinOp:
			walk(x.Left)
			walk(x.Right)
		case *ast.Compare:
			walk(x.Left)
			for _, c := range x.Comparators {
				walk(c)
			}
		case *ast.Call:
			walk(x.Func)
			for _, a := range x.Args {
				walk(a)
			}
			for _, kw := range x.Keywords {
				walk(kw.Value)
			}
		case *ast.Attribute:
			walk(x.Value)
		case *ast.Subscript:
			walk(x.Value)
		case *ast.IfExp:
			walk(x.Test)
			walk(x.Body)
			walk(x.OrElse)
		case *ast.Tuple:
			for _, el := range x.Elts {
				walk(el)
			}
		case *ast.ListLit:
			for _, el := range x.Elts {
				walk(el)
			}
		}
	}
	walk(e)
	return out
}
