// Package staticeval implements best-effort constant evaluation: it
// reduces an expression to a concrete values.Value whenever every
// operand is itself statically known, and falls back to
// values.Unknown{} rather than ever failing or panicking.
package staticeval

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
	"math"
)

// Evaluate reduces node to a static value under ctx, or
// values.Unknown{} if it cannot be determined.
func Evaluate(node ast.Expression, ctx *context.ExtendedContext) values.Value {
	switch n := node.(type) {
	case *ast.Num:
		return values.Num(n.Value)
	case *ast.Str:
		return values.Str(n.Value)
	case *ast.Name:
		switch n.Id {
		case "None":
			return values.None{}
		case "True":
			return values.Bool(true)
		case "False":
			return values.Bool(false)
		}
		sym, ok := ctx.Get(n.Id)
		if !ok || sym.Value == nil {
			return values.Unknown{}
		}
		return sym.Value
	case *ast.BoolOp:
		return evalBoolOp(n, ctx)
	case *ast.UnaryOp:
		return evalUnaryOp(n, ctx)
	case *ast.BinOp:
		return evalBinOp(n, ctx)
	case *ast.Compare:
		return evalCompare(n, ctx)
	case *ast.ListLit:
		return values.List(evalEach(n.Elts, ctx))
	case *ast.SetLit:
		return values.Set(evalEach(n.Elts, ctx))
	case *ast.Tuple:
		return values.Tuple(evalEach(n.Elts, ctx))
	case *ast.DictLit:
		entries := make(values.Dict, 0, len(n.Keys))
		for i := range n.Keys {
			entries = append(entries, values.DictEntry{
				Key:   Evaluate(n.Keys[i], ctx),
				Value: Evaluate(n.Values[i], ctx),
			})
		}
		return entries
	case *ast.IfExp:
		test := Evaluate(n.Test, ctx)
		if b, ok := test.(values.Bool); ok {
			if bool(b) {
				return Evaluate(n.Body, ctx)
			}
			return Evaluate(n.OrElse, ctx)
		}
		return values.Unknown{}
	case *ast.Attribute:
		return values.Unknown{}
	}
	return values.Unknown{}
}

func evalEach(exprs []ast.Expression, ctx *context.ExtendedContext) []values.Value {
	out := make([]values.Value, len(exprs))
	for i, e := range exprs {
		out[i] = Evaluate(e, ctx)
	}
	return out
}

func evalBoolOp(n *ast.BoolOp, ctx *context.ExtendedContext) values.Value {
	var acc values.Value = values.Unknown{}
	for i, v := range n.Values {
		val := Evaluate(v, ctx)
		if i == 0 {
			acc = val
			continue
		}
		acc = operatorEvaluate(boolOpName(n.Op), acc, val)
	}
	return acc
}

func boolOpName(op ast.BoolOpKind) string {
	if op == ast.And {
		return "And"
	}
	return "Or"
}

func evalUnaryOp(n *ast.UnaryOp, ctx *context.ExtendedContext) values.Value {
	v := Evaluate(n.Operand, ctx)
	if values.IsUnknown(v) {
		return values.Unknown{}
	}
	switch n.Op {
	case ast.Not:
		b, ok := asBool(v)
		if !ok {
			return values.Unknown{}
		}
		return values.Bool(!b)
	case ast.USub:
		if num, ok := v.(values.Num); ok {
			return values.Num(-num)
		}
		return values.Unknown{}
	case ast.UAdd:
		if num, ok := v.(values.Num); ok {
			return values.Num(num)
		}
		return values.Unknown{}
	case ast.Invert:
		if num, ok := v.(values.Num); ok {
			return values.Num(float64(^int64(num)))
		}
		return values.Unknown{}
	}
	return values.Unknown{}
}

func asBool(v values.Value) (bool, bool) {
	switch vv := v.(type) {
	case values.Bool:
		return bool(vv), true
	case values.None:
		return false, true
	case values.Num:
		return vv != 0, true
	case values.Str:
		return vv != "", true
	}
	return false, false
}

func evalBinOp(n *ast.BinOp, ctx *context.ExtendedContext) values.Value {
	left := Evaluate(n.Left, ctx)
	right := Evaluate(n.Right, ctx)
	return operatorEvaluate(binOpName(n.Op), left, right)
}

func binOpName(op ast.BinOpKind) string {
	switch op {
	case ast.Add:
		return "Add"
	case ast.Sub:
		return "Sub"
	case ast.Mult:
		return "Mult"
	case ast.Div:
		return "Div"
	case ast.Mod:
		return "Mod"
	case ast.Pow:
		return "Pow"
	case ast.BitAnd:
		return "BitAnd"
	case ast.BitOr:
		return "BitOr"
	case ast.BitXor:
		return "BitXor"
	case ast.LShift:
		return "LShift"
	case ast.RShift:
		return "RShift"
	}
	return ""
}

// operatorEvaluate applies a named operator over two static values,
// catching every failure mode (type mismatch, division by zero) and
// returning Unknown instead.
func operatorEvaluate(op string, a, b values.Value) (result values.Value) {
	defer func() {
		if recover() != nil {
			result = values.Unknown{}
		}
	}()
	if values.IsUnknown(a) || values.IsUnknown(b) {
		return values.Unknown{}
	}
	switch op {
	case "And":
		ab, aok := asBool(a)
		if aok && !ab {
			return a
		}
		if !aok {
			return values.Unknown{}
		}
		return b
	case "Or":
		ab, aok := asBool(a)
		if aok && ab {
			return a
		}
		if !aok {
			return values.Unknown{}
		}
		return b
	}
	an, aok := a.(values.Num)
	bn, bok := b.(values.Num)
	if aok && bok {
		switch op {
		case "Add":
			return an + bn
		case "Sub":
			return an - bn
		case "Mult":
			return an * bn
		case "Div":
			if bn == 0 {
				return values.Unknown{}
			}
			return an / bn
		case "Mod":
			if bn == 0 {
				return values.Unknown{}
			}
			return values.Num(math.Mod(float64(an), float64(bn)))
		case "Pow":
			return values.Num(math.Pow(float64(an), float64(bn)))
		case "BitAnd":
			return values.Num(int64(an) & int64(bn))
		case "BitOr":
			return values.Num(int64(an) | int64(bn))
		case "BitXor":
			return values.Num(int64(an) ^ int64(bn))
		case "LShift":
			return values.Num(int64(an) << uint(int64(bn)))
		case "RShift":
			return values.Num(int64(an) >> uint(int64(bn)))
		}
	}
	as, asok := a.(values.Str)
	bs, bsok := b.(values.Str)
	if op == "Add" && asok && bsok {
		return as + bs
	}
	al, alok := a.(values.List)
	bl, blok := b.(values.List)
	if op == "Add" && alok && blok {
		return append(append(values.List{}, al...), bl...)
	}
	return values.Unknown{}
}

func evalCompare(n *ast.Compare, ctx *context.ExtendedContext) values.Value {
	exprs := make([]ast.Expression, 0, len(n.Comparators)+1)
	exprs = append(exprs, n.Left)
	exprs = append(exprs, n.Comparators...)
	operands := make([]values.Value, len(exprs))
	for i, e := range exprs {
		operands[i] = Evaluate(e, ctx)
	}
	var result values.Value = values.Bool(true)
	for i, op := range n.Ops {
		step := comparisonEvaluate(op, operands[i], operands[i+1])
		if values.IsUnknown(step) {
			step = typeBasedCompare(op, exprs[i], exprs[i+1], ctx)
		}
		if values.IsUnknown(step) {
			return values.Unknown{}
		}
		result = operatorEvaluate("And", result, step)
	}
	return result
}

// typeBasedCompare decides an identity/equality comparison from the
// operands' inferred types alone: two types with no common inhabitant
// compare false under ==/is and true under !=/is not, even when the
// values themselves are unknown.
func typeBasedCompare(op ast.CompareOpKind, left, right ast.Expression, ctx *context.ExtendedContext) values.Value {
	switch op {
	case ast.Eq, ast.NotEq, ast.Is, ast.IsNot:
	default:
		return values.Unknown{}
	}
	lt := staticTypeOf(left, ctx)
	rt := staticTypeOf(right, ctx)
	if lt == nil || rt == nil {
		return values.Unknown{}
	}
	if typesystem.Intersect(lt, rt) != nil {
		return values.Unknown{}
	}
	decisive := op == ast.NotEq || op == ast.IsNot
	return values.Bool(decisive)
}

// staticTypeOf resolves the handful of expression shapes whose type is
// knowable without the full bidirectional typer.
func staticTypeOf(e ast.Expression, ctx *context.ExtendedContext) typesystem.Type {
	switch n := e.(type) {
	case *ast.Num:
		return typesystem.Num{}
	case *ast.Str:
		return typesystem.Str{}
	case *ast.Name:
		switch n.Id {
		case "None":
			return typesystem.NoneType{}
		case "True", "False":
			return typesystem.Bool{}
		}
		if sym, ok := ctx.Get(n.Id); ok {
			return sym.EffectiveType()
		}
	}
	return nil
}

// comparisonEvaluate short-circuits to Unknown unless both operands
// are comparable.
func comparisonEvaluate(op ast.CompareOpKind, a, b values.Value) (result values.Value) {
	defer func() {
		if recover() != nil {
			result = values.Unknown{}
		}
	}()
	if values.IsUnknown(a) || values.IsUnknown(b) {
		return values.Unknown{}
	}
	switch op {
	case ast.Eq:
		return values.Bool(values.Equal(a, b))
	case ast.NotEq:
		return values.Bool(!values.Equal(a, b))
	case ast.Is:
		_, an := a.(values.None)
		_, bn := b.(values.None)
		if an || bn {
			return values.Bool(an && bn)
		}
		return values.Bool(values.Equal(a, b))
	case ast.IsNot:
		_, an := a.(values.None)
		_, bn := b.(values.None)
		if an || bn {
			return values.Bool(!(an && bn))
		}
		return values.Bool(!values.Equal(a, b))
	}
	an, aok := a.(values.Num)
	bn, bok := b.(values.Num)
	if aok && bok {
		switch op {
		case ast.Lt:
			return values.Bool(an < bn)
		case ast.LtE:
			return values.Bool(an <= bn)
		case ast.Gt:
			return values.Bool(an > bn)
		case ast.GtE:
			return values.Bool(an >= bn)
		}
	}
	as, asok := a.(values.Str)
	bs, bsok := b.(values.Str)
	if asok && bsok {
		switch op {
		case ast.Lt:
			return values.Bool(as < bs)
		case ast.LtE:
			return values.Bool(as <= bs)
		case ast.Gt:
			return values.Bool(as > bs)
		case ast.GtE:
			return values.Bool(as >= bs)
		}
	}
	if op == ast.In || op == ast.NotIn {
		found := false
		switch coll := b.(type) {
		case values.List:
			for _, v := range coll {
				if values.Equal(v, a) {
					found = true
					break
				}
			}
		case values.Set:
			for _, v := range coll {
				if values.Equal(v, a) {
					found = true
					break
				}
			}
		case values.Tuple:
			for _, v := range coll {
				if values.Equal(v, a) {
					found = true
					break
				}
			}
		case values.Dict:
			_, found = coll.Get(a)
		default:
			return values.Unknown{}
		}
		if op == ast.In {
			return values.Bool(found)
		}
		return values.Bool(!found)
	}
	return values.Unknown{}
}

// ComparableTypes reports whether two inferred types admit ordering
// comparison, used by the visitor before trusting Compare results.
func ComparableTypes(a, b typesystem.Type) bool {
	_, aNum := a.(typesystem.Num)
	_, bNum := b.(typesystem.Num)
	if aNum && bNum {
		return true
	}
	_, aStr := a.(typesystem.Str)
	_, bStr := b.(typesystem.Str)
	return aStr && bStr
}

// UnifiableTypes reports whether two inferred types may be safely
// unified for container-literal element checking: true whenever neither side
// is a bare Unknown, since lattice Unify always produces something
// sensible otherwise.
func UnifiableTypes(a, b typesystem.Type) bool {
	_, aUnk := a.(typesystem.Unknown)
	_, bUnk := b.(typesystem.Unknown)
	return !aUnk && !bUnk
}
