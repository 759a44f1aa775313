// Package analyzer implements the static type checker:
// a bidirectional expression typer, a best-effort evaluator-backed
// function-call engine, branch-sensitive optional refinement, and a
// statement visitor that turns all of it into a closed set of
// warnings.
package analyzer

import (
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/typesystem"
)

// Visitor carries the mutable state threaded through a single
// analysis run: the scope stack, the collected warnings, and the
// function-call cache shared across every call site so
// recursive/repeated calls with structurally equal argument scopes
// are only evaluated once.
type Visitor struct {
	Context   *context.Context
	Warnings  *diagnostics.Collector
	callCache map[string]callCacheEntry
	callStack []string
}

// NewVisitor builds a Visitor rooted at ctx with an empty warning
// collector and call cache.
func NewVisitor(ctx *context.Context) *Visitor {
	return &Visitor{
		Context:   ctx,
		Warnings:  diagnostics.NewCollector(),
		callCache: make(map[string]callCacheEntry),
	}
}

// ctx produces the ExtendedContext overlay used for a single
// construct's visit, mirroring ScopeVisitor.context() in the
// statement-visitor grounding: a frozen read-through view of the
// current scope stack that constraint discovery can write into
// without leaking bindings back onto the stack.
func (v *Visitor) ctx() *context.ExtendedContext {
	return v.Context.Overlay()
}

// unify/intersect convenience aliases kept local so callers read
// "typesystem.Unify" only once, at the lattice package boundary.
var (
	unify     = typesystem.Unify
	intersect = typesystem.Intersect
	subset    = typesystem.Subset
)
