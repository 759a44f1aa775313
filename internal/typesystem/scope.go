package typesystem

import (
	"github.com/vela-lang/vela/internal/values"
	"sort"
)

// Symbol binds a name to its inferred Type and, where known, a static
// Value. Constraint holds a transient narrowed Type installed by
// constraint discovery; it is consulted by lookups in
// preference to Type and cleared by ClearConstraint.
type Symbol struct {
	Name       string
	Type       Type
	Value      values.Value
	Constraint Type
}

// NewSymbol builds a Symbol with no static value and no constraint.
func NewSymbol(name string, t Type) *Symbol {
	return &Symbol{Name: name, Type: t, Value: values.Unknown{}}
}

// EffectiveType returns the constraint if one is installed, else Type.
func (s *Symbol) EffectiveType() Type {
	if s.Constraint != nil {
		return s.Constraint
	}
	return s.Type
}

// AddConstraint narrows the symbol's effective type without disturbing
// its declared Type.
func (s *Symbol) AddConstraint(t Type) {
	s.Constraint = t
}

func (s *Symbol) ClearConstraint() {
	s.Constraint = nil
}

// Scope is an insertion-ordered name-to-Symbol table, plus an optional
// "return" binding used to collect a function body's return types.
// Scope satisfies AttrScope so Instance/Class can use one as an
// attribute table directly.
type Scope struct {
	order   []string
	symbols map[string]*Symbol
	ret     *Symbol
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// Add installs sym, overwriting any existing binding of the same name
// but preserving its original position in Names().
func (s *Scope) Add(sym *Symbol) {
	if _, exists := s.symbols[sym.Name]; !exists {
		s.order = append(s.order, sym.Name)
	}
	s.symbols[sym.Name] = sym
}

// Remove deletes name from the scope, if present.
func (s *Scope) Remove(name string) {
	if _, ok := s.symbols[name]; !ok {
		return
	}
	delete(s.symbols, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the symbol bound to name, if any.
func (s *Scope) Get(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// GetType satisfies AttrScope.
func (s *Scope) GetType(name string) (Type, bool) {
	sym, ok := s.Get(name)
	if !ok {
		return nil, false
	}
	return sym.EffectiveType(), true
}

// Names returns bound names in insertion order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SortedNames returns bound names sorted lexically, for deterministic
// scope-dump rendering.
func (s *Scope) SortedNames() []string {
	out := s.Names()
	sort.Strings(out)
	return out
}

// Merge copies every binding of other into s, overwriting on conflict.
func (s *Scope) Merge(other *Scope) {
	for _, name := range other.Names() {
		sym, _ := other.Get(name)
		s.Add(sym)
	}
}

// SetReturn installs sym as this scope's synthetic return binding.
func (s *Scope) SetReturn(sym *Symbol) { s.ret = sym }

// GetReturn returns the return binding, if one was ever installed.
func (s *Scope) GetReturn() (*Symbol, bool) {
	if s.ret == nil {
		return nil, false
	}
	return s.ret, true
}

// Copy returns a shallow clone: a new symbol table, same *Symbol
// pointers. Context.Copy does not use it: it shares the *Scope
// pointers themselves.
func (s *Scope) Copy() *Scope {
	out := NewScope()
	for _, name := range s.order {
		out.Add(s.symbols[name])
	}
	out.ret = s.ret
	return out
}
