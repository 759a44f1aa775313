package analyzer

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
)

// AssignResult is one (name, old-symbol?, new-symbol) triple produced
// by an assignment, letting the statement visitor warn on reassignment
// and type change.
type AssignResult struct {
	Name string
	Old  *typesystem.Symbol // nil if this is a fresh binding
	New  *typesystem.Symbol
}

// fatalError is panicked for the handful of conditions that are
// programmer bugs rather than warnings (an assignment target shape
// outside the recognized set). The top-level Analyze entrypoint
// recovers it.
type fatalError struct{ msg string }

func (e *fatalError) Error() string { return e.msg }

// Assign destructures target against the already-inferred rhsType
// (and, where known, rhsValue) and installs the resulting bindings in
// the current top scope. When generator is true, rhsType is the
// iterable being unpacked, not the assigned type itself: each Name
// target receives its element type.
func (v *Visitor) Assign(target ast.Expression, rhsType typesystem.Type, rhsValue values.Value, generator bool, ectx *context.ExtendedContext) []AssignResult {
	switch t := target.(type) {
	case *ast.Name:
		assignedType := rhsType
		if generator {
			assignedType = elementTypeOf(rhsType)
		}
		// Only a rebinding within the *same* scope layer is a
		// reassignment/type-change; a write that shadows an outer
		// binding from a freshly pushed loop/branch/function
		// scope is conditional-assignment territory, which visitIf's
		// own merge logic and the loop/function body scopes already
		// handle on their own terms.
		var old *typesystem.Symbol
		if sym, ok := v.Context.Top().Get(t.Id); ok {
			old = sym
		}
		sym := typesystem.NewSymbol(t.Id, assignedType)
		if rhsValue != nil {
			sym.Value = rhsValue
		}
		v.Context.Add(sym)
		return []AssignResult{{Name: t.Id, Old: old, New: sym}}

	case *ast.Tuple:
		return v.assignSequence(t.Elts, rhsType, generator, ectx)

	case *ast.ListLit:
		return v.assignSequence(t.Elts, rhsType, generator, ectx)

	case *ast.Subscript:
		// Subscript assignment is recognized but left unchecked.
		v.visit(t, typesystem.Unknown{}, ectx, true)
		return nil

	case *ast.Attribute:
		base := v.Probe(t.Value, ectx)
		if inst, ok := base.(typesystem.Instance); ok {
			if scope, ok := inst.Attributes.(*typesystem.Scope); ok {
				old, _ := scope.Get(t.Attr)
				sym := typesystem.NewSymbol(t.Attr, rhsType)
				if rhsValue != nil {
					sym.Value = rhsValue
				}
				scope.Add(sym)
				return []AssignResult{{Name: t.Attr, Old: old, New: sym}}
			}
		}
		return nil
	}

	panic(&fatalError{msg: "unrecognized-assignment-target"})
}

// assignSequence implements the Tuple/List target case: pairwise
// against a matching Tuple, elementwise against List/Set, else Unknown
// to every element.
func (v *Visitor) assignSequence(elts []ast.Expression, rhsType typesystem.Type, generator bool, ectx *context.ExtendedContext) []AssignResult {
	var out []AssignResult
	effective := rhsType
	if generator {
		effective = elementTypeOf(rhsType)
	}
	if tup, ok := effective.(typesystem.Tuple); ok && len(tup.Items) == len(elts) {
		for i, e := range elts {
			out = append(out, v.Assign(e, tup.Items[i], values.Unknown{}, false, ectx)...)
		}
		return out
	}
	elemType := elementTypeOf(effective)
	for _, e := range elts {
		out = append(out, v.Assign(e, elemType, values.Unknown{}, false, ectx)...)
	}
	return out
}
