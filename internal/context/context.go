// Package context implements the explicit scope stack the analyzer
// threads through every visit: a LIFO list of
// *typesystem.Scope layers, with scope 0 reserved for builtins and
// never poppable.
package context

import (
	"fmt"
	"github.com/vela-lang/vela/internal/typesystem"
)

// Context is a mutable stack of scopes. The analyzer pushes a new
// layer on entering a function/branch/loop body and pops it on exit;
// name lookup walks from the top of the stack down to scope 0.
type Context struct {
	scopes []*typesystem.Scope
}

// New builds a Context with a single scope (conventionally the
// builtins preload) as scope 0.
func New(builtins *typesystem.Scope) *Context {
	if builtins == nil {
		builtins = typesystem.NewScope()
	}
	return &Context{scopes: []*typesystem.Scope{builtins}}
}

// BeginScope pushes a fresh empty scope.
func (c *Context) BeginScope() {
	c.scopes = append(c.scopes, typesystem.NewScope())
}

// EndScope pops the top scope. Popping scope 0 (the builtins layer)
// is forbidden.
func (c *Context) EndScope() *typesystem.Scope {
	if len(c.scopes) <= 1 {
		panic("context: cannot end the builtin scope")
	}
	top := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	return top
}

// Depth returns the number of active scope layers.
func (c *Context) Depth() int { return len(c.scopes) }

// Top returns the innermost scope.
func (c *Context) Top() *typesystem.Scope {
	return c.scopes[len(c.scopes)-1]
}

// Add binds sym in the innermost scope.
func (c *Context) Add(sym *typesystem.Symbol) {
	c.Top().Add(sym)
}

// Remove deletes name from whichever scope currently binds it.
func (c *Context) Remove(name string) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].Get(name); ok {
			c.scopes[i].Remove(name)
			return
		}
	}
}

// Get resolves name from the innermost scope outward.
func (c *Context) Get(name string) (*typesystem.Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i].Get(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// FindScope returns the scope (from innermost outward) that currently
// binds name, if any.
func (c *Context) FindScope(name string) (*typesystem.Scope, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].Get(name); ok {
			return c.scopes[i], true
		}
	}
	return nil, false
}

// SetReturn installs sym as the return binding of the nearest
// function-body scope; by convention this is the innermost scope a
// function's own visitor pushed, so it targets Top().
func (c *Context) SetReturn(sym *typesystem.Symbol) {
	c.Top().SetReturn(sym)
}

// GetReturn looks outward for the nearest scope carrying a return
// binding.
func (c *Context) GetReturn() (*typesystem.Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i].GetReturn(); ok {
			return sym, true
		}
	}
	return nil, false
}

// Copy returns a shallow clone: a new stack slice holding the same
// *Scope pointers, so mutations to a shared scope (e.g. a closure's
// captured environment) are visible through both contexts.
func (c *Context) Copy() *Context {
	out := make([]*typesystem.Scope, len(c.scopes))
	copy(out, c.scopes)
	return &Context{scopes: out}
}

// Overlay produces an ExtendedContext frozen on top of c.
func (c *Context) Overlay() *ExtendedContext {
	return &ExtendedContext{base: c, extra: typesystem.NewScope()}
}

// ExtendedContext is a single extra scope layered read-through on top
// of a frozen base Context: lookups check the overlay
// first, then fall back to the base. Used by the statement visitor's
// per-construct `ctx()` helper so narrowly-scoped bindings (e.g.
// branch refinements) never leak into the base stack.
type ExtendedContext struct {
	base  *Context
	extra *typesystem.Scope
}

// Add binds sym in the overlay only.
func (e *ExtendedContext) Add(sym *typesystem.Symbol) {
	e.extra.Add(sym)
}

// Get checks the overlay, then the frozen base.
func (e *ExtendedContext) Get(name string) (*typesystem.Symbol, bool) {
	if sym, ok := e.extra.Get(name); ok {
		return sym, true
	}
	return e.base.Get(name)
}

// Base returns the frozen underlying Context.
func (e *ExtendedContext) Base() *Context { return e.base }

// Copy is disallowed: an ExtendedContext is a transient view, never a
// snapshot.
func (e *ExtendedContext) Copy() *ExtendedContext {
	panic(fmt.Errorf("context: ExtendedContext is not copyable"))
}
