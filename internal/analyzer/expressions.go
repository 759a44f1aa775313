package analyzer

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/staticeval"
	"github.com/vela-lang/vela/internal/typesystem"
)

// Visit infers node's type under expected (the caller's context, used
// to disambiguate a handful of constructs; a Name visited under a
// non-Unknown expected is narrowed to the intersection and reports a
// type-error when that intersection is empty) and records warnings
// along the way.
func (v *Visitor) Visit(node ast.Expression, expected typesystem.Type, ectx *context.ExtendedContext) typesystem.Type {
	return v.visit(node, expected, ectx, false)
}

// Probe infers node's type with no warnings emitted: used internally
// to disambiguate overloaded operators and to type default values,
// lambda bodies and class bodies ahead of the warning-emitting pass.
func (v *Visitor) Probe(node ast.Expression, ectx *context.ExtendedContext) typesystem.Type {
	return v.visit(node, typesystem.Unknown{}, ectx, true)
}

func (v *Visitor) report(pos ast.Pos, cat diagnostics.Category, label, detail string, silent bool) {
	if silent {
		return
	}
	v.Warnings.Report(pos, cat, label, detail)
}

func (v *Visitor) visit(node ast.Expression, expected typesystem.Type, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	switch n := node.(type) {
	case *ast.Num:
		return typesystem.Num{}
	case *ast.Str:
		return typesystem.Str{}
	case *ast.Repr:
		v.visit(n.Value, typesystem.Unknown{}, ectx, silent)
		return typesystem.Str{}
	case *ast.Name:
		return v.visitName(n, expected, ectx, silent)
	case *ast.BoolOp:
		return v.visitBoolOp(n, ectx, silent)
	case *ast.UnaryOp:
		return v.visitUnaryOp(n, ectx, silent)
	case *ast.BinOp:
		return v.visitBinOp(n, ectx, silent)
	case *ast.Lambda:
		return v.visitLambda(n, ectx)
	case *ast.IfExp:
		return v.visitIfExp(n, expected, ectx, silent)
	case *ast.DictLit:
		return v.visitDictLit(n, ectx, silent)
	case *ast.SetLit:
		return v.visitSetLit(n, ectx, silent)
	case *ast.ListComp:
		return v.visitListComp(n, ectx, silent)
	case *ast.SetComp:
		return v.visitSetComp(n, ectx, silent)
	case *ast.DictComp:
		return v.visitDictComp(n, ectx, silent)
	case *ast.GeneratorExp:
		return v.visitGeneratorExp(n, ectx, silent)
	case *ast.Yield:
		if n.Value != nil {
			v.visit(n.Value, typesystem.Unknown{}, ectx, silent)
		}
		return typesystem.NoneType{}
	case *ast.Compare:
		return v.visitCompare(n, ectx, silent)
	case *ast.Call:
		return v.visitCall(n, ectx, silent)
	case *ast.Attribute:
		return v.visitAttribute(n, ectx, silent)
	case *ast.Subscript:
		return v.visitSubscript(n, ectx, silent)
	case *ast.ListLit:
		return v.visitListLit(n, ectx, silent)
	case *ast.Tuple:
		return v.visitTupleLit(n, ectx, silent)
	}
	return typesystem.Unknown{}
}

// visitName resolves a name's declared type and records a constraint
// narrowing it to expected: the symbol's effective type is intersected
// with expected, and an empty intersection is a type-error.
func (v *Visitor) visitName(n *ast.Name, expected typesystem.Type, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	switch n.Id {
	case "None":
		return typesystem.NoneType{}
	case "True", "False":
		return typesystem.Bool{}
	}
	sym, ok := ectx.Get(n.Id)
	if !ok {
		v.report(n.Pos(), diagnostics.Undefined, n.Id, "", silent)
		return typesystem.Unknown{}
	}
	current := sym.EffectiveType()
	if !silent && !isUnknownT(current) {
		v.Warnings.Annotate(n.Pos(), n.Id, current.String())
	}
	if !isUnknownT(expected) {
		narrowed := intersect(current, expected)
		if narrowed == nil {
			v.report(n.Pos(), diagnostics.TypeError, n.Id, "incompatible constraint", silent)
		} else {
			sym.AddConstraint(narrowed)
			return narrowed
		}
	}
	return current
}

func (v *Visitor) visitBoolOp(n *ast.BoolOp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	for _, operand := range n.Values {
		v.visit(operand, typesystem.Bool{}, ectx, silent)
	}
	return typesystem.Bool{}
}

func (v *Visitor) visitUnaryOp(n *ast.UnaryOp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	switch n.Op {
	case ast.Not:
		v.visit(n.Operand, typesystem.Bool{}, ectx, silent)
		return typesystem.Bool{}
	default:
		t := v.visit(n.Operand, typesystem.Num{}, ectx, silent)
		if !silent && !subset(t, typesystem.Num{}) && !isUnknownT(t) {
			v.report(n.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n.Operand), "expected Num", silent)
		}
		return typesystem.Num{}
	}
}

func isUnknownT(t typesystem.Type) bool {
	_, ok := t.(typesystem.Unknown)
	return ok
}

// checkUnifiable warns inconsistent-types once per literal the first
// time a new element's type shares no common member with the running
// unified type: mirrors
// staticeval.UnifiableTypes' "skip when Unknown" guard, then requires
// one side be a subset of the other rather than accepting any Union.
func (v *Visitor) checkUnifiable(pos ast.Pos, label string, running, next typesystem.Type, silent bool, warned *bool) {
	if silent || *warned || isUnknownT(running) || isUnknownT(next) {
		return
	}
	if subset(next, running) || subset(running, next) {
		return
	}
	v.report(pos, diagnostics.InconsistentTypes, label, "", silent)
	*warned = true
}

// visitBinOp special-cases Add/Mult/Mod: probe both operands first
// (silently), classify the pair of known types, and only then decide
// the result type and whether to warn.
func (v *Visitor) visitBinOp(n *ast.BinOp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	left := v.Probe(n.Left, ectx)
	right := v.Probe(n.Right, ectx)

	switch n.Op {
	case ast.Add:
		_, lTup := left.(typesystem.Tuple)
		_, rTup := right.(typesystem.Tuple)
		if lTup || rTup {
			v.visit(n.Left, typesystem.BaseTuple{}, ectx, silent)
			v.visit(n.Right, typesystem.BaseTuple{}, ectx, silent)
			if lTup && rTup {
				lt := left.(typesystem.Tuple)
				rt := right.(typesystem.Tuple)
				return typesystem.Tuple{Items: append(append([]typesystem.Type{}, lt.Items...), rt.Items...)}
			}
			other := left
			if lTup {
				other = right
			}
			if !isUnknownT(other) {
				v.report(n.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n), "cannot concatenate tuple with "+other.String(), silent)
			}
			return typesystem.Unknown{}
		}
		v.visit(n.Left, typesystem.Unknown{}, ectx, silent)
		v.visit(n.Right, typesystem.Unknown{}, ectx, silent)
		result := addResultType(left, right)
		if isUnknownT(result) && !isUnknownT(left) && !isUnknownT(right) {
			v.report(n.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n), left.String()+" + "+right.String(), silent)
		}
		return result
	case ast.Mult:
		v.visit(n.Left, typesystem.Unknown{}, ectx, silent)
		v.visit(n.Right, typesystem.Unknown{}, ectx, silent)
		return multResultType(left, right)
	case ast.Mod:
		v.visit(n.Left, typesystem.Unknown{}, ectx, silent)
		v.visit(n.Right, typesystem.Unknown{}, ectx, silent)
		switch left.(type) {
		case typesystem.Str:
			return typesystem.Str{}
		case typesystem.Num:
			return typesystem.Num{}
		}
		return typesystem.Unknown{}
	default:
		v.visit(n.Left, typesystem.Num{}, ectx, silent)
		v.visit(n.Right, typesystem.Num{}, ectx, silent)
		if !silent {
			if !isUnknownT(left) && !subset(left, typesystem.Num{}) {
				v.report(n.Left.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n.Left), "expected Num", silent)
			}
			if !isUnknownT(right) && !subset(right, typesystem.Num{}) {
				v.report(n.Right.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n.Right), "expected Num", silent)
			}
		}
		return typesystem.Num{}
	}
}

// addResultType classifies a non-tuple `+`: Str+Str, List+List, and
// Num+Num each produce their own kind; anything else (including a
// still-unknown operand) produces Unknown.
func addResultType(left, right typesystem.Type) typesystem.Type {
	if isUnknownT(left) || isUnknownT(right) {
		return typesystem.Unknown{}
	}
	_, lStr := left.(typesystem.Str)
	_, rStr := right.(typesystem.Str)
	if lStr && rStr {
		return typesystem.Str{}
	}
	if ll, ok := left.(typesystem.List); ok {
		if rl, ok2 := right.(typesystem.List); ok2 {
			return typesystem.List{Item: unify(ll.Item, rl.Item)}
		}
	}
	_, lNum := left.(typesystem.Num)
	_, rNum := right.(typesystem.Num)
	if lNum && rNum {
		return typesystem.Num{}
	}
	return typesystem.Unknown{}
}

func multResultType(left, right typesystem.Type) typesystem.Type {
	if isUnknownT(left) || isUnknownT(right) {
		return typesystem.Unknown{}
	}
	if ll, ok := left.(typesystem.List); ok {
		if _, ok2 := right.(typesystem.Num); ok2 {
			return ll
		}
	}
	_, lStr := left.(typesystem.Str)
	_, rStr := right.(typesystem.Str)
	_, lNum := left.(typesystem.Num)
	_, rNum := right.(typesystem.Num)
	switch {
	case lStr && rNum, lNum && rStr:
		return typesystem.Str{}
	case lNum && rNum:
		return typesystem.Num{}
	}
	return typesystem.Num{}
}

func (v *Visitor) visitLambda(n *ast.Lambda, ectx *context.ExtendedContext) typesystem.Type {
	sig := buildSignature(n.Params, nil, ectx, v)
	v.Context.BeginScope()
	for i, p := range n.Params.Names {
		v.Context.Add(typesystem.NewSymbol(p.Name, sig.Type(i)))
	}
	bodyType := v.Probe(n.Body, v.ctx())
	v.Context.EndScope()
	return typesystem.Function{Signature: sig, ReturnType: bodyType, Evaluator: noopEvaluator{}}
}

func (v *Visitor) visitIfExp(n *ast.IfExp, expected typesystem.Type, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	v.visit(n.Test, typesystem.Bool{}, ectx, silent)
	body := v.visit(n.Body, expected, ectx, silent)
	orelse := v.visit(n.OrElse, expected, ectx, silent)
	return unify(body, orelse)
}

func (v *Visitor) visitDictLit(n *ast.DictLit, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	var keyT, valT typesystem.Type = typesystem.Unknown{}, typesystem.Unknown{}
	warned := false
	for i := range n.Keys {
		k := v.visit(n.Keys[i], typesystem.Unknown{}, ectx, silent)
		val := v.visit(n.Values[i], typesystem.Unknown{}, ectx, silent)
		if i == 0 {
			keyT, valT = k, val
			continue
		}
		v.checkUnifiable(n.Pos(), diagnostics.NodeLabel(n.Keys[i]), keyT, k, silent, &warned)
		keyT = unify(keyT, k)
		valT = unify(valT, val)
	}
	return typesystem.Dict{Key: keyT, Value: valT}
}

func (v *Visitor) visitSetLit(n *ast.SetLit, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	var item typesystem.Type = typesystem.Unknown{}
	warned := false
	for i, e := range n.Elts {
		t := v.visit(e, typesystem.Unknown{}, ectx, silent)
		if i == 0 {
			item = t
			continue
		}
		v.checkUnifiable(n.Pos(), diagnostics.NodeLabel(e), item, t, silent, &warned)
		item = unify(item, t)
	}
	return typesystem.Set{Item: item}
}

func (v *Visitor) bindComprehensionTargets(gens []ast.Comprehension, ectx *context.ExtendedContext, silent bool) {
	for _, gen := range gens {
		iterT := v.visit(gen.Iter, typesystem.Unknown{}, ectx, silent)
		elemT := elementTypeOf(iterT)
		if nameTarget, ok := gen.Target.(*ast.Name); ok {
			v.Context.Add(typesystem.NewSymbol(nameTarget.Id, elemT))
		}
		for _, cond := range gen.Ifs {
			v.visit(cond, typesystem.Bool{}, ectx, silent)
		}
	}
}

func elementTypeOf(t typesystem.Type) typesystem.Type {
	switch tt := t.(type) {
	case typesystem.List:
		return tt.Item
	case typesystem.Set:
		return tt.Item
	case typesystem.Dict:
		return tt.Key
	default:
		return typesystem.Unknown{}
	}
}

func (v *Visitor) visitListComp(n *ast.ListComp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	v.Context.BeginScope()
	v.bindComprehensionTargets(n.Generators, v.ctx(), silent)
	elt := v.visit(n.Elt, typesystem.Unknown{}, v.ctx(), silent)
	v.Context.EndScope()
	return typesystem.List{Item: elt}
}

func (v *Visitor) visitSetComp(n *ast.SetComp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	v.Context.BeginScope()
	v.bindComprehensionTargets(n.Generators, v.ctx(), silent)
	elt := v.visit(n.Elt, typesystem.Unknown{}, v.ctx(), silent)
	v.Context.EndScope()
	return typesystem.Set{Item: elt}
}

func (v *Visitor) visitDictComp(n *ast.DictComp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	v.Context.BeginScope()
	v.bindComprehensionTargets(n.Generators, v.ctx(), silent)
	key := v.visit(n.Key, typesystem.Unknown{}, v.ctx(), silent)
	val := v.visit(n.Value, typesystem.Unknown{}, v.ctx(), silent)
	v.Context.EndScope()
	return typesystem.Dict{Key: key, Value: val}
}

func (v *Visitor) visitGeneratorExp(n *ast.GeneratorExp, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	v.Context.BeginScope()
	v.bindComprehensionTargets(n.Generators, v.ctx(), silent)
	elt := v.visit(n.Elt, typesystem.Unknown{}, v.ctx(), silent)
	v.Context.EndScope()
	return typesystem.List{Item: elt}
}

// chainWarning reports the chaining category matching ops when a
// Compare has more than two operands, narrowed to the is-operator/
// in-operator-specific categories when every op in the chain is of
// that kind.
func (v *Visitor) chainWarning(n *ast.Compare, silent bool) {
	if silent || len(n.Ops) < 2 {
		return
	}
	allIs, allIn := true, true
	for _, op := range n.Ops {
		if op != ast.Is && op != ast.IsNot {
			allIs = false
		}
		if op != ast.In && op != ast.NotIn {
			allIn = false
		}
	}
	switch {
	case allIs:
		v.report(n.Pos(), diagnostics.IsOperatorChaining, diagnostics.NodeLabel(n), "", silent)
	case allIn:
		v.report(n.Pos(), diagnostics.InOperatorChaining, diagnostics.NodeLabel(n), "", silent)
	default:
		v.report(n.Pos(), diagnostics.ComparisonOperatorChain, diagnostics.NodeLabel(n), "", silent)
	}
}

func (v *Visitor) visitCompare(n *ast.Compare, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	operands := make([]ast.Expression, 0, len(n.Comparators)+1)
	operands = append(operands, n.Left)
	operands = append(operands, n.Comparators...)
	v.chainWarning(n, silent)
	for i, op := range n.Ops {
		left, right := operands[i], operands[i+1]
		switch op {
		case ast.Is, ast.IsNot:
			v.visit(left, typesystem.NewMaybe(typesystem.Unknown{}), ectx, silent)
			v.visit(right, typesystem.NoneType{}, ectx, silent)
		case ast.In, ast.NotIn:
			rightType := v.Probe(right, ectx)
			switch c := rightType.(type) {
			case typesystem.List:
				v.visit(left, c.Item, ectx, silent)
				v.visit(right, typesystem.Unknown{}, ectx, silent)
			case typesystem.Set:
				v.visit(left, c.Item, ectx, silent)
				v.visit(right, typesystem.Unknown{}, ectx, silent)
			case typesystem.Dict:
				v.visit(left, c.Key, ectx, silent)
				v.visit(right, typesystem.Unknown{}, ectx, silent)
			default:
				leftType := v.visit(left, typesystem.Unknown{}, ectx, silent)
				container := typesystem.Union{Members: []typesystem.Type{
					typesystem.List{Item: leftType},
					typesystem.Set{Item: leftType},
					typesystem.Dict{Key: leftType, Value: typesystem.Unknown{}},
				}}
				v.visit(right, container, ectx, silent)
				if !isUnknownT(rightType) {
					v.report(n.Pos(), diagnostics.InOperatorArgNotListDict, diagnostics.NodeLabel(right), "", silent)
				}
			}
		default:
			// Equality/ordering: constrain both sides to their common type.
			leftType := v.Probe(left, ectx)
			rightType := v.Probe(right, ectx)
			common := intersect(leftType, rightType)
			if common == nil {
				if !staticeval.ComparableTypes(leftType, rightType) {
					v.report(n.Pos(), diagnostics.TypeError, diagnostics.NodeLabel(n), "incomparable types", silent)
				}
				v.visit(left, typesystem.Unknown{}, ectx, silent)
				v.visit(right, typesystem.Unknown{}, ectx, silent)
			} else {
				v.visit(left, common, ectx, silent)
				v.visit(right, common, ectx, silent)
			}
		}
	}
	return typesystem.Bool{}
}

func (v *Visitor) visitAttribute(n *ast.Attribute, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	base := v.visit(n.Value, typesystem.Unknown{}, ectx, silent)
	switch b := base.(type) {
	case typesystem.Instance:
		if b.Attributes != nil {
			if t, ok := b.Attributes.GetType(n.Attr); ok {
				return t
			}
		}
	case typesystem.Class:
		if b.ClassAttributes != nil {
			if t, ok := b.ClassAttributes.GetType(n.Attr); ok {
				return t
			}
		}
	case typesystem.Unknown:
	default:
		v.report(n.Pos(), diagnostics.NotAnInstance, diagnostics.NodeLabel(n.Value), base.String(), silent)
	}
	return typesystem.Unknown{}
}

func (v *Visitor) visitSubscript(n *ast.Subscript, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	base := v.visit(n.Value, typesystem.Unknown{}, ectx, silent)
	switch idx := n.Slice.(type) {
	case *ast.Slice:
		if idx.Lower != nil {
			v.visit(idx.Lower, typesystem.Num{}, ectx, silent)
		}
		if idx.Upper != nil {
			v.visit(idx.Upper, typesystem.Num{}, ectx, silent)
		}
		if idx.Step != nil {
			v.visit(idx.Step, typesystem.Num{}, ectx, silent)
		}
		return base
	case *ast.Index:
		idxType := v.visit(idx.Value, typesystem.Unknown{}, ectx, silent)
		switch bt := base.(type) {
		case typesystem.List:
			return bt.Item
		case typesystem.Set:
			return bt.Item
		case typesystem.Dict:
			return bt.Value
		case typesystem.Tuple:
			if i, ok := tupleIndexOf(idx.Value); ok && i >= 0 && i < len(bt.Items) {
				return bt.Items[i]
			}
			return typesystem.Unknown{}
		case typesystem.Str:
			_ = idxType
			return typesystem.Str{}
		}
	}
	return typesystem.Unknown{}
}

// tupleIndexOf extracts a literal integer index, the only case a
// fixed-arity Tuple subscript can be statically resolved.
func tupleIndexOf(e ast.Expression) (int, bool) {
	n, ok := e.(*ast.Num)
	if !ok {
		return 0, false
	}
	return int(n.Value), true
}

func (v *Visitor) visitListLit(n *ast.ListLit, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	var item typesystem.Type = typesystem.Unknown{}
	warned := false
	for i, e := range n.Elts {
		t := v.visit(e, typesystem.Unknown{}, ectx, silent)
		if i == 0 {
			item = t
			continue
		}
		v.checkUnifiable(n.Pos(), diagnostics.NodeLabel(e), item, t, silent, &warned)
		item = unify(item, t)
	}
	return typesystem.List{Item: item}
}

func (v *Visitor) visitTupleLit(n *ast.Tuple, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	items := make([]typesystem.Type, len(n.Elts))
	for i, e := range n.Elts {
		items[i] = v.visit(e, typesystem.Unknown{}, ectx, silent)
	}
	return typesystem.Tuple{Items: items}
}

// noopEvaluator backs lambdas, whose bodies are single expressions
// already typed eagerly at definition time; Evaluate returns Unknown,
// so a call falls back to the Function's ReturnType probed then.
type noopEvaluator struct{}

func (noopEvaluator) Evaluate(argScope typesystem.AttrScope) (typesystem.Type, any) {
	return typesystem.Unknown{}, nil
}
