package analyzer

import (
	"fmt"
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/typesystem"
	"sort"
	"strings"
)

// buildSignature resolves a parameter list into a *typesystem.Signature,
// combining an optional `@types(...)` declaration with types inferred
// from default-value expressions: explicit types win over defaults,
// Unknown otherwise.
func buildSignature(params ast.Params, decl *ast.TypesDecorator, ectx *context.ExtendedContext, v *Visitor) *typesystem.Signature {
	n := len(params.Names)
	names := make([]string, n)
	declared := make([]typesystem.Type, n)
	defaults := make([]typesystem.Type, n)
	effective := make([]typesystem.Type, n)
	minCount := 0
	seenDefault := false
	for i, p := range params.Names {
		names[i] = p.Name
		declared[i] = typesystem.Unknown{}
		if decl != nil {
			if expr, ok := decl.Keyword[p.Name]; ok {
				declared[i] = typeExprToType(expr)
			} else if i < len(decl.Positional) {
				declared[i] = typeExprToType(decl.Positional[i])
			}
		}
		if p.Default != nil {
			defaults[i] = v.Probe(p.Default, ectx)
			seenDefault = true
		} else {
			defaults[i] = typesystem.Unknown{}
			if !seenDefault {
				minCount++
			}
		}
		if !isUnknownT(declared[i]) {
			effective[i] = declared[i]
		} else {
			effective[i] = defaults[i]
		}
	}
	sig := &typesystem.Signature{
		Names:          names,
		DeclaredTypes:  declared,
		DefaultTypes:   defaults,
		EffectiveTypes: effective,
		MinCount:       minCount,
		VarArgName:     params.VarArg,
		KwArgName:      params.KwArg,
		VarArgType:     typesystem.Unknown{},
		KwArgType:      typesystem.Unknown{},
	}
	// `@types(args=Num)`/`@types(kwargs=Num)` declares
	// the element type of a `*args`/`**kwargs` catch-all by name, the
	// same keyword-slot mechanism ordinary parameters use.
	if decl != nil {
		if params.VarArg != "" {
			if expr, ok := decl.Keyword[params.VarArg]; ok {
				sig.VarArgType = typeExprToType(expr)
			}
		}
		if params.KwArg != "" {
			if expr, ok := decl.Keyword[params.KwArg]; ok {
				sig.KwArgType = typeExprToType(expr)
			}
		}
	}
	return sig
}

// typeExprToType interprets a `@types(...)` argument expression as a
// Type: a bare Name referencing a builtin type constructor, or a Call
// of one for a parametrized type (List(Num), Dict(Str,Num),
// Maybe(Str), Union(Num,Str)).
func typeExprToType(e ast.Expression) typesystem.Type {
	switch n := e.(type) {
	case *ast.Name:
		return scalarTypeName(n.Id)
	case *ast.Call:
		name, ok := n.Func.(*ast.Name)
		if !ok {
			return typesystem.Unknown{}
		}
		args := make([]typesystem.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = typeExprToType(a)
		}
		switch name.Id {
		case "List":
			if len(args) > 0 {
				return typesystem.List{Item: args[0]}
			}
			return typesystem.List{Item: typesystem.Unknown{}}
		case "Set":
			if len(args) > 0 {
				return typesystem.Set{Item: args[0]}
			}
			return typesystem.Set{Item: typesystem.Unknown{}}
		case "Dict":
			if len(args) == 2 {
				return typesystem.Dict{Key: args[0], Value: args[1]}
			}
			return typesystem.Dict{Key: typesystem.Unknown{}, Value: typesystem.Unknown{}}
		case "Tuple":
			return typesystem.Tuple{Items: args}
		case "Maybe":
			if len(args) > 0 {
				return typesystem.NewMaybe(args[0])
			}
			return typesystem.Unknown{}
		case "Union":
			members := typesystem.Reduce(args)
			if len(members) == 1 {
				return members[0]
			}
			return typesystem.Union{Members: members}
		}
	}
	return typesystem.Unknown{}
}

func scalarTypeName(id string) typesystem.Type {
	switch id {
	case "Num":
		return typesystem.Num{}
	case "Str":
		return typesystem.Str{}
	case "Bool":
		return typesystem.Bool{}
	case "NoneType":
		return typesystem.NoneType{}
	case "BaseTuple":
		return typesystem.BaseTuple{}
	default:
		return typesystem.Unknown{}
	}
}

// callCacheEntry is a memoized call result.
type callCacheEntry struct {
	Type  typesystem.Type
	Value any
}

// functionEvaluator implements typesystem.Evaluator for a user-defined
// function: it re-visits the body under a fresh scope binding the
// argument types, caches results keyed by a structural description of
// the argument scope, and short-circuits recursive reentry with
// Unknown instead of looping forever.
type functionEvaluator struct {
	visitor    *Visitor
	def        *ast.FunctionDef
	sig        *typesystem.Signature
	closureCtx *context.Context
}

func (fe *functionEvaluator) Evaluate(argScope typesystem.AttrScope) (typesystem.Type, any) {
	key := fe.cacheKey(argScope)
	if entry, ok := fe.visitor.callCache[key]; ok {
		return entry.Type, entry.Value
	}
	for _, onStack := range fe.visitor.callStack {
		if onStack == key {
			return typesystem.Unknown{}, nil
		}
	}
	fe.visitor.callStack = append(fe.visitor.callStack, key)
	defer func() {
		fe.visitor.callStack = fe.visitor.callStack[:len(fe.visitor.callStack)-1]
	}()

	saved := fe.visitor.Context
	fe.visitor.Context = fe.closureCtx.Copy()
	fe.visitor.Context.BeginScope()
	for i, name := range fe.sig.Names {
		if concrete, ok := argScope.(*typesystem.Scope); ok {
			if sym, found := concrete.Get(name); found {
				// Reuse the caller's Symbol object (rather than
				// wrapping its type in a fresh one) so constraint
				// recording during the body visit narrows it in
				// place; the discovery pass in buildFunctionType
				// reads this back to sharpen the signature.
				fe.visitor.Context.Add(sym)
				continue
			}
		}
		t := fe.sig.Type(i)
		if at, found := argScope.GetType(name); found {
			t = at
		}
		fe.visitor.Context.Add(typesystem.NewSymbol(name, t))
	}
	// Bind the function's own name so a recursive self-call resolves
	// to this evaluator (and hits the reentry guard) instead of
	// reporting undefined during the construction passes, before the
	// enclosing scope carries the finished Function.
	if _, shadowed := fe.visitor.Context.Top().Get(fe.def.Name); !shadowed {
		fe.visitor.Context.Add(typesystem.NewSymbol(fe.def.Name, typesystem.Function{
			Signature:  fe.sig,
			ReturnType: typesystem.Unknown{},
			Evaluator:  fe,
		}))
	}

	fe.visitor.VisitBody(fe.def.Body)
	var returnType typesystem.Type = typesystem.NoneType{}
	if retSym, ok := fe.visitor.Context.Top().GetReturn(); ok {
		returnType = retSym.EffectiveType()
	}
	fe.visitor.Context.EndScope()
	fe.visitor.Context = saved

	fe.visitor.callCache[key] = callCacheEntry{Type: returnType, Value: nil}
	return returnType, nil
}

// cacheKey renders a deterministic signature of the call: function
// name plus each parameter's effective type string, giving the cache
// structural equality over argument scopes.
func (fe *functionEvaluator) cacheKey(argScope typesystem.AttrScope) string {
	parts := make([]string, 0, len(fe.sig.Names)+1)
	parts = append(parts, fe.def.Name)
	for _, name := range fe.sig.Names {
		t, ok := argScope.GetType(name)
		if !ok {
			parts = append(parts, name+"=?")
			continue
		}
		parts = append(parts, name+"="+t.String())
	}
	sort.Strings(parts[1:])
	return strings.Join(parts, "|")
}

// visitCall resolves the callee, builds its argument scope, validates
// arity/keywords, and invokes the callee's Evaluator.
func (v *Visitor) visitCall(n *ast.Call, ectx *context.ExtendedContext, silent bool) typesystem.Type {
	calleeType := v.visit(n.Func, typesystem.Unknown{}, ectx, silent)

	var sig *typesystem.Signature
	var evaluator typesystem.Evaluator
	var resultIfUncallable typesystem.Type = typesystem.Unknown{}
	isConstructor := false

	switch ct := calleeType.(type) {
	case typesystem.Function:
		sig, evaluator = ct.Signature, ct.Evaluator
		resultIfUncallable = ct.ReturnType
	case typesystem.Class:
		sig, evaluator = ct.Signature, ct.Evaluator
		resultIfUncallable = ct.InstanceType
		isConstructor = true
	case typesystem.Unknown:
		for _, a := range n.Args {
			v.visit(a, typesystem.Unknown{}, ectx, silent)
		}
		for _, kw := range n.Keywords {
			v.visit(kw.Value, typesystem.Unknown{}, ectx, silent)
		}
		return typesystem.Unknown{}
	default:
		if nm, ok := n.Func.(*ast.Name); ok {
			v.report(n.Pos(), diagnostics.UndefinedFunction, nm.Id, "", silent)
		} else {
			v.report(n.Pos(), diagnostics.NotAFunction, diagnostics.NodeLabel(n.Func), "", silent)
		}
		for _, a := range n.Args {
			v.visit(a, typesystem.Unknown{}, ectx, silent)
		}
		return typesystem.Unknown{}
	}

	argScope := typesystem.NewScope()
	provided := make(map[string]bool)

	for i, argExpr := range n.Args {
		var expected typesystem.Type = typesystem.Unknown{}
		var name string
		if i < len(sig.Names) {
			expected = sig.Type(i)
			name = sig.Names[i]
		} else if sig.VarArgName != "" {
			name = fmt.Sprintf("%s#%d", sig.VarArgName, i-len(sig.Names))
		}
		argType := v.visit(argExpr, expected, ectx, silent)
		if i < len(sig.Names) {
			if !silent && !isUnknownT(argType) && !isUnknownT(expected) && !subset(argType, expected) {
				v.report(argExpr.Pos(), diagnostics.TypeError, sig.Names[i], "argument type mismatch", silent)
			}
			provided[sig.Names[i]] = true
			argScope.Add(typesystem.NewSymbol(sig.Names[i], argType))
		} else if sig.VarArgName != "" {
			if !silent && !isUnknownT(argType) && !isUnknownT(sig.VarArgEffectiveType()) && !subset(argType, sig.VarArgEffectiveType()) {
				v.report(argExpr.Pos(), diagnostics.InvalidVarargType, sig.VarArgName, "expected "+sig.VarArgEffectiveType().String(), silent)
			}
			argScope.Add(typesystem.NewSymbol(name, argType))
		} else if !silent {
			v.report(argExpr.Pos(), diagnostics.TooManyArguments, diagnostics.NodeLabel(n.Func), "", silent)
		}
	}

	for _, kw := range n.Keywords {
		expected, ok := sig.ByName(kw.Name)
		if !ok {
			if sig.KwArgName != "" {
				t := v.visit(kw.Value, typesystem.Unknown{}, ectx, silent)
				if !silent && !isUnknownT(t) && !isUnknownT(sig.KwArgEffectiveType()) && !subset(t, sig.KwArgEffectiveType()) {
					v.report(kw.Value.Pos(), diagnostics.InvalidKwargType, kw.Name, "expected "+sig.KwArgEffectiveType().String(), silent)
				}
				argScope.Add(typesystem.NewSymbol(kw.Name, t))
				continue
			}
			v.visit(kw.Value, typesystem.Unknown{}, ectx, silent)
			if !silent {
				v.report(kw.Value.Pos(), diagnostics.ExtraKeyword, kw.Name, "", silent)
			}
			continue
		}
		t := v.visit(kw.Value, expected, ectx, silent)
		if !silent && !isUnknownT(t) && !isUnknownT(expected) && !subset(t, expected) {
			v.report(kw.Value.Pos(), diagnostics.TypeError, kw.Name, "argument type mismatch", silent)
		}
		provided[kw.Name] = true
		argScope.Add(typesystem.NewSymbol(kw.Name, t))
	}

	if n.StarArgs != nil {
		v.visit(n.StarArgs, typesystem.Unknown{}, ectx, silent)
	}
	if n.KwArgs != nil {
		v.visit(n.KwArgs, typesystem.Unknown{}, ectx, silent)
	}

	if !silent && n.StarArgs == nil && n.KwArgs == nil {
		for i := 0; i < sig.MinCount; i++ {
			if i >= len(sig.Names) {
				break
			}
			if !provided[sig.Names[i]] {
				v.report(n.Pos(), diagnostics.MissingArgument, sig.Names[i], "", silent)
			}
		}
	}

	for i, name := range sig.Names {
		if !provided[name] {
			argScope.Add(typesystem.NewSymbol(name, sig.Type(i)))
		}
	}

	if evaluator == nil {
		return resultIfUncallable
	}
	t, _ := evaluator.Evaluate(argScope)
	if isConstructor {
		// A constructor call runs __init__ for its constraint and
		// warning side effects, but the call's type is the instance.
		return resultIfUncallable
	}
	if isUnknownT(t) {
		return resultIfUncallable
	}
	return t
}
