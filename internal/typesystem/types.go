// Package typesystem implements the type lattice: a tagged-variant
// algebraic domain (Unknown, NoneType, Bool, Num, Str, List, Set,
// Dict, Tuple, BaseTuple, Maybe, Union, Instance, Class, Function)
// plus its algebra (equality, union, intersection, subset, reduction).
//
// Every case is a distinct Go type implementing Type; algorithms dispatch
// on them with a type switch rather than a class hierarchy, per the
// dynamic-typing-to-tagged-variant design note.
package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface implemented by every member of the lattice.
type Type interface {
	String() string
	typeNode()
}

// Unknown is the top of the lattice: "don't know". Every type is a
// subset of Unknown; Unknown is a subset of no narrower type.
type Unknown struct{}

func (Unknown) String() string { return "Unknown" }
func (Unknown) typeNode()      {}

type NoneType struct{}

func (NoneType) String() string { return "NoneType" }
func (NoneType) typeNode()      {}

type Bool struct{}

func (Bool) String() string { return "Bool" }
func (Bool) typeNode()      {}

type Num struct{}

func (Num) String() string { return "Num" }
func (Num) typeNode()      {}

type Str struct{}

func (Str) String() string { return "Str" }
func (Str) typeNode()      {}

type List struct{ Item Type }

func (l List) String() string { return fmt.Sprintf("List(%s)", l.Item) }
func (List) typeNode()        {}

type Set struct{ Item Type }

func (s Set) String() string { return fmt.Sprintf("Set(%s)", s.Item) }
func (Set) typeNode()        {}

type Dict struct {
	Key   Type
	Value Type
}

func (d Dict) String() string { return fmt.Sprintf("Dict(%s,%s)", d.Key, d.Value) }
func (Dict) typeNode()        {}

// Tuple is a fixed-arity heterogeneous sequence; arity is part of identity.
type Tuple struct{ Items []Type }

func (t Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return fmt.Sprintf("Tuple(%s)", strings.Join(parts, ","))
}
func (Tuple) typeNode() {}

// BaseTuple matches any Tuple regardless of arity; used only as an
// expected type, never as an inferred one.
type BaseTuple struct{}

func (BaseTuple) String() string { return "BaseTuple" }
func (BaseTuple) typeNode()      {}

// Maybe is an optional type: inhabitants are values of Inner or None.
type Maybe struct{ Inner Type }

func (m Maybe) String() string { return fmt.Sprintf("Maybe(%s)", m.Inner) }
func (Maybe) typeNode()        {}

// NewMaybe builds a Maybe, flattening any nested Maybe inner type so
// Maybe(Maybe(T)) always normalizes to Maybe(T).
// Every constructor of a Maybe value (unify, intersect, the @types(...)
// annotation parser) should go through this rather than building the
// struct literal directly.
func NewMaybe(inner Type) Type {
	for {
		m, ok := inner.(Maybe)
		if !ok {
			break
		}
		inner = m.Inner
	}
	return Maybe{Inner: inner}
}

// Union is a normalized set of ≥2 alternative types: no duplicates, no
// member a subset of another. Construct with Unify/Reduce, never
// directly, to preserve the invariant.
type Union struct{ Members []Type }

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
func (Union) typeNode() {}

// AttrScope is the minimal surface a scope must provide to back an
// Instance's or Class's attribute table; *Scope satisfies it, and the
// function evaluator accepts one so the lattice never depends on the
// analyzer's context machinery.
type AttrScope interface {
	GetType(name string) (Type, bool)
}

// Instance is a value of a user-defined class.
type Instance struct {
	ClassName  string
	Attributes AttrScope
}

func (i Instance) String() string { return fmt.Sprintf("Instance(%s)", i.ClassName) }
func (Instance) typeNode()        {}

// Evaluator is implemented by the function-call evaluator;
// Function/Class hold one so Call expressions can invoke it.
type Evaluator interface {
	Evaluate(argScope AttrScope) (Type, any)
}

// Class is a callable that produces an Instance, plus its own static
// methods/attributes.
type Class struct {
	Name            string
	Signature       *Signature
	InstanceType    Instance
	Evaluator       Evaluator
	ClassAttributes AttrScope
}

func (c Class) String() string { return fmt.Sprintf("Class(%s)", c.Name) }
func (Class) typeNode()        {}

// Function is a callable value: a signature, its declared/inferred
// return type, and an evaluator. BoundInstance is non-nil for bound
// methods (the instance `self` was already partially applied to).
type Function struct {
	Signature     *Signature
	ReturnType    Type
	Evaluator     Evaluator
	BoundInstance *Instance
}

func (f Function) String() string {
	return fmt.Sprintf("Function(%s)->%s", f.Signature, f.ReturnType)
}
func (Function) typeNode() {}
