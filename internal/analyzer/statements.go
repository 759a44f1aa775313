package analyzer

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/staticeval"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
)

// VisitBody walks a statement list in the current scope, in source
// order, so later statements observe earlier bindings.
func (v *Visitor) VisitBody(body []ast.Statement) {
	for _, stmt := range body {
		v.VisitStatement(stmt)
	}
}

// VisitStatement dispatches a single statement to its handler.
func (v *Visitor) VisitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assign:
		v.visitAssign(s)
	case *ast.AugAssign:
		v.visitAugAssign(s)
	case *ast.Return:
		v.visitReturn(s)
	case *ast.ExprStmt:
		v.visitExprStmt(s)
	case *ast.If:
		v.visitIf(s)
	case *ast.While:
		v.visitWhile(s)
	case *ast.For:
		v.visitFor(s)
	case *ast.With:
		v.visitWith(s)
	case *ast.Delete:
		v.visitDelete(s)
	case *ast.FunctionDef:
		v.visitFunctionDef(s)
	case *ast.ClassDef:
		v.visitClassDef(s)
	case *ast.Import:
		v.visitImport(s)
	case *ast.ImportFrom:
		v.visitImportFrom(s)
	default:
		panic(&fatalError{msg: "unrecognized-statement-kind"})
	}
}

// reportAssignResults turns the (old, new) pairs Assign returns into
// reassignment/type-change warnings.
func (v *Visitor) reportAssignResults(pos ast.Pos, results []AssignResult) {
	for _, r := range results {
		if r.Old == nil {
			continue
		}
		v.Warnings.Report(pos, diagnostics.Reassignment, r.Name, "")
		oldType, newType := r.Old.EffectiveType(), r.New.EffectiveType()
		if !typesystem.Equal(oldType, newType) {
			v.Warnings.Report(pos, diagnostics.TypeChange, r.Name, oldType.String()+" -> "+newType.String())
		}
	}
}

func (v *Visitor) visitAssign(s *ast.Assign) {
	ectx := v.ctx()
	rhsType := v.Visit(s.Value, typesystem.Unknown{}, ectx)
	rhsValue := staticeval.Evaluate(s.Value, ectx)
	for _, target := range s.Targets {
		results := v.Assign(target, rhsType, rhsValue, false, ectx)
		v.reportAssignResults(s.Pos(), results)
	}
}

func (v *Visitor) visitAugAssign(s *ast.AugAssign) {
	ectx := v.ctx()
	synthetic := &ast.BinOp{Base: ast.Base{P: s.Pos()}, Op: s.Op, Left: s.Target, Right: s.Value}
	newType := v.visitBinOp(synthetic, ectx, false)
	results := v.Assign(s.Target, newType, values.Unknown{}, false, ectx)
	v.reportAssignResults(s.Pos(), results)
}

func (v *Visitor) visitReturn(s *ast.Return) {
	ectx := v.ctx()
	var retType typesystem.Type = typesystem.NoneType{}
	if s.Value != nil {
		retType = v.Visit(s.Value, typesystem.Unknown{}, ectx)
	}
	v.recordReturn(s.Pos(), retType)
}

// recordReturn unifies retType with the current scope's prior return
// type (if any), warning when two known types collapse to Unknown
// under unification, then installs the new return symbol.
func (v *Visitor) recordReturn(pos ast.Pos, retType typesystem.Type) {
	scope := v.Context.Top()
	if prior, ok := scope.GetReturn(); ok {
		priorType := prior.EffectiveType()
		merged := unify(priorType, retType)
		if isUnknownT(merged) && !isUnknownT(priorType) && !isUnknownT(retType) {
			v.Warnings.Report(pos, diagnostics.MultipleReturnTypes, "return", priorType.String()+" vs "+retType.String())
		}
		retType = merged
	}
	scope.SetReturn(typesystem.NewSymbol("return", retType))
}

// visitExprStmt handles a bare expression statement, including a bare
// `yield`, which contributes List(elem) to the enclosing return type.
func (v *Visitor) visitExprStmt(s *ast.ExprStmt) {
	ectx := v.ctx()
	if y, ok := s.Value.(*ast.Yield); ok {
		var elem typesystem.Type = typesystem.Unknown{}
		if y.Value != nil {
			elem = v.Visit(y.Value, typesystem.Unknown{}, ectx)
		}
		v.recordReturn(s.Pos(), typesystem.List{Item: elem})
		return
	}
	v.Visit(s.Value, typesystem.Unknown{}, ectx)
}

// visitIf: a constant test short-circuits to the live branch only;
// otherwise both branches run under
// branch-refinement overlays and their resulting bindings are merged.
func (v *Visitor) visitIf(s *ast.If) {
	ectx := v.ctx()
	v.Visit(s.Test, typesystem.Bool{}, ectx)

	if b, ok := asStaticBool(staticeval.Evaluate(s.Test, ectx)); ok {
		v.Warnings.Report(s.Pos(), diagnostics.ConstantIfCondition, diagnostics.NodeLabel(s.Test), "")
		live := s.Body
		if !b {
			live = s.OrElse
		}
		liveScope := v.visitBranch(live, Refinements{})
		for _, name := range liveScope.Names() {
			sym, _ := liveScope.Get(name)
			v.Context.Add(sym)
		}
		if ret, ok := liveScope.GetReturn(); ok {
			v.recordReturn(s.Pos(), ret.EffectiveType())
		}
		return
	}

	thenR, elseR := v.BranchRefinements(s.Test, ectx)

	before := v.Context.Top()
	preNames := map[string]bool{}
	for _, n := range before.Names() {
		preNames[n] = true
	}

	thenScope := v.visitBranch(s.Body, thenR)
	elseScope := v.visitBranch(s.OrElse, elseR)

	names := map[string]bool{}
	for _, n := range thenScope.Names() {
		names[n] = true
	}
	for _, n := range elseScope.Names() {
		names[n] = true
	}
	for name := range names {
		thenSym, inThen := thenScope.Get(name)
		elseSym, inElse := elseScope.Get(name)
		existedBefore := preNames[name]
		switch {
		case inThen && inElse:
			merged := unify(thenSym.EffectiveType(), elseSym.EffectiveType())
			if isUnknownT(merged) && !isUnknownT(thenSym.EffectiveType()) && !isUnknownT(elseSym.EffectiveType()) {
				v.Warnings.Report(s.Pos(), diagnostics.ConditionalType, name, thenSym.EffectiveType().String()+" vs "+elseSym.EffectiveType().String())
			}
			v.Context.Add(typesystem.NewSymbol(name, merged))
		case existedBefore:
			// Only one branch touched an already-existing variable: the
			// other path leaves it untouched, so the result unifies the
			// assigning branch's type with the pre-if type rather than
			// discarding the assignment outright — the common
			// `x = None; if cond: x = 3` idiom this produces is exactly
			// what property 5's Maybe-producing unify rule is for.
			beforeSym, _ := before.Get(name)
			var branchSym *typesystem.Symbol
			if inThen {
				branchSym = thenSym
			} else {
				branchSym = elseSym
			}
			v.Context.Add(typesystem.NewSymbol(name, unify(beforeSym.EffectiveType(), branchSym.EffectiveType())))
		default:
			v.Warnings.Report(s.Pos(), diagnostics.ConditionallyAssigned, name, "")
			if inThen {
				v.Context.Add(typesystem.NewSymbol(name, thenSym.EffectiveType()))
			} else {
				v.Context.Add(typesystem.NewSymbol(name, elseSym.EffectiveType()))
			}
		}
	}

	thenRet, thenOK := thenScope.GetReturn()
	elseRet, elseOK := elseScope.GetReturn()
	switch {
	case thenOK && elseOK:
		merged := unify(thenRet.EffectiveType(), elseRet.EffectiveType())
		if isUnknownT(merged) && !isUnknownT(thenRet.EffectiveType()) && !isUnknownT(elseRet.EffectiveType()) {
			v.Warnings.Report(s.Pos(), diagnostics.ConditionalReturnType, "return", thenRet.EffectiveType().String()+" vs "+elseRet.EffectiveType().String())
		}
		v.recordReturn(s.Pos(), merged)
	case thenOK:
		v.recordReturn(s.Pos(), thenRet.EffectiveType())
	case elseOK:
		v.recordReturn(s.Pos(), elseRet.EffectiveType())
	}
}

// visitBranch runs body under a two-layer scope: an inferences layer
// carrying refine's narrowed bindings, and a body layer the statements
// themselves write into. It returns the body layer so the caller can
// inspect what it bound.
func (v *Visitor) visitBranch(body []ast.Statement, refine Refinements) *typesystem.Scope {
	v.Context.BeginScope()
	for name, t := range refine {
		v.Context.Add(typesystem.NewSymbol(name, t))
	}
	v.Context.BeginScope()
	v.VisitBody(body)
	bodyScope := v.Context.EndScope()
	v.Context.EndScope()
	return bodyScope
}

func (v *Visitor) visitWhile(s *ast.While) {
	ectx := v.ctx()
	v.Visit(s.Test, typesystem.Bool{}, ectx)
	v.VisitBody(s.Body)
}

func (v *Visitor) visitFor(s *ast.For) {
	ectx := v.ctx()
	iterType := v.Visit(s.Iter, typesystem.Unknown{}, ectx)
	v.Context.BeginScope()
	v.Assign(s.Target, iterType, values.Unknown{}, true, v.ctx())
	v.VisitBody(s.Body)
	v.Context.EndScope()
}

func (v *Visitor) visitWith(s *ast.With) {
	ectx := v.ctx()
	ctxType := v.Visit(s.Context, typesystem.Unknown{}, ectx)
	v.Context.BeginScope()
	if s.Target != nil {
		v.Assign(s.Target, ctxType, values.Unknown{}, false, v.ctx())
	}
	v.VisitBody(s.Body)
	v.Context.EndScope()
}

func (v *Visitor) visitDelete(s *ast.Delete) {
	v.Warnings.Report(s.Pos(), diagnostics.Delete, diagnostics.NodeLabel(s.Target), "")
}

func (v *Visitor) visitImport(s *ast.Import) {
	if v.Context.Depth() > 1 {
		v.Warnings.Report(s.Pos(), diagnostics.NonGlobalImport, s.Name, "")
	}
}

func (v *Visitor) visitImportFrom(s *ast.ImportFrom) {
	if v.Context.Depth() > 1 {
		v.Warnings.Report(s.Pos(), diagnostics.NonGlobalImport, s.Module, "")
	}
}

// visitFunctionDef builds the function's type and installs it under
// its own name in the current scope, warning if an
// annotated parameter type and its default-value type disagree.
func (v *Visitor) visitFunctionDef(s *ast.FunctionDef) {
	ectx := v.ctx()
	fn := v.buildFunctionType(s, ectx)
	for i, name := range fn.Signature.Names {
		declared := fn.Signature.DeclaredTypes[i]
		def := fn.Signature.DefaultTypes[i]
		if !isUnknownT(declared) && !isUnknownT(def) && !subset(def, declared) {
			v.Warnings.Report(s.Pos(), diagnostics.DefaultArgumentTypeError, name, declared.String()+" vs "+def.String())
		}
	}
	v.Context.Add(typesystem.NewSymbol(s.Name, fn))
}

// buildFunctionType is a two-pass construction: a discovery pass runs
// the body once against the generic scope (each
// parameter bound to its effective type) to sharpen the signature via
// constraint recording, then a fresh evaluator bound to a cloned
// definition-time context is attached for real call-site use.
func (v *Visitor) buildFunctionType(def *ast.FunctionDef, ectx *context.ExtendedContext) typesystem.Function {
	sig := buildSignature(def.Params, def.TypesDecl, ectx, v)

	generic := typesystem.NewScope()
	for i, name := range sig.Names {
		generic.Add(typesystem.NewSymbol(name, sig.Type(i)))
	}
	discovery := &functionEvaluator{visitor: v, def: def, sig: sig, closureCtx: v.Context.Copy()}
	discovery.Evaluate(generic)
	for i, name := range sig.Names {
		if sym, ok := generic.Get(name); ok {
			sig.EffectiveTypes[i] = sym.EffectiveType()
		}
	}

	evaluator := &functionEvaluator{visitor: v, def: def, sig: sig, closureCtx: v.Context.Copy()}
	returnType, _ := evaluator.Evaluate(generic)
	return typesystem.Function{Signature: sig, ReturnType: returnType, Evaluator: evaluator}
}

// visitClassDef analyzes a class body in its own scope: methods and
// attributes declared directly in the body become the class's
// static attribute table; if `__init__` exists, its `self.*`
// assignments are collected into a separate instance-attribute table
// and its signature minus `self` becomes the class's call signature.
// An instance attribute name that collides with a body-declared name
// triggers the `overlapping-class-names` check.
func (v *Visitor) visitClassDef(s *ast.ClassDef) {
	v.Context.BeginScope()
	v.VisitBody(s.Body)
	classScope := v.Context.EndScope()

	attrScope := typesystem.NewScope()
	instance := typesystem.Instance{ClassName: s.Name, Attributes: attrScope}
	class := typesystem.Class{Name: s.Name, InstanceType: instance, ClassAttributes: classScope}

	var initDef *ast.FunctionDef
	for _, stmt := range s.Body {
		if fd, ok := stmt.(*ast.FunctionDef); ok && fd.Name == "__init__" {
			initDef = fd
		}
	}

	if initDef != nil && len(initDef.Params.Names) > 0 {
		selfName := initDef.Params.Names[0].Name
		v.Context.BeginScope()
		v.Context.Add(typesystem.NewSymbol(selfName, instance))
		for _, stmt := range initDef.Body {
			assign, ok := stmt.(*ast.Assign)
			if !ok {
				continue
			}
			for _, target := range assign.Targets {
				attr, ok := target.(*ast.Attribute)
				if !ok {
					continue
				}
				base, ok := attr.Value.(*ast.Name)
				if !ok || base.Id != selfName {
					continue
				}
				attrScope.Add(typesystem.NewSymbol(attr.Attr, v.Probe(assign.Value, v.ctx())))
			}
		}
		v.Context.EndScope()

		if initSym, ok := classScope.Get("__init__"); ok {
			if initFn, ok := initSym.EffectiveType().(typesystem.Function); ok {
				class.Signature = initFn.Signature.CopyWithoutFirstArgument()
				class.Evaluator = initFn.Evaluator
			}
		}

		for _, name := range attrScope.Names() {
			if _, exists := classScope.Get(name); exists {
				v.Warnings.Report(s.Pos(), diagnostics.OverlappingClassNames, name, "")
			}
		}
	}

	// Expose body-declared methods through the instance as bound
	// functions (first parameter dropped). Instance attributes set in
	// __init__ keep priority over a same-named method; the overlap
	// check above already flagged the collision.
	for _, name := range classScope.Names() {
		if name == "__init__" {
			continue
		}
		if _, taken := attrScope.Get(name); taken {
			continue
		}
		sym, _ := classScope.Get(name)
		if fn, ok := sym.EffectiveType().(typesystem.Function); ok {
			bound := typesystem.Function{
				Signature:     fn.Signature.CopyWithoutFirstArgument(),
				ReturnType:    fn.ReturnType,
				Evaluator:     fn.Evaluator,
				BoundInstance: &instance,
			}
			attrScope.Add(typesystem.NewSymbol(name, bound))
		}
	}

	if class.Signature == nil {
		class.Signature = &typesystem.Signature{}
	}
	if class.Evaluator == nil {
		class.Evaluator = noopEvaluator{}
	}

	v.Context.Add(typesystem.NewSymbol(s.Name, class))
}
