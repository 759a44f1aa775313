package typesystem

import "strings"

// Signature is a callable's formal-parameter descriptor:
// names, effective types, which prefix has defaults, and optional
// */** catch-alls.
type Signature struct {
	Names          []string
	DeclaredTypes  []Type // from @types(...); Unknown where absent
	DefaultTypes   []Type // inferred from default-value expressions; Unknown where absent
	EffectiveTypes []Type // DeclaredTypes[i] if not Unknown, else DefaultTypes[i], else Unknown; replaced by the body-narrowed type after discovery
	MinCount       int    // positional count with no default
	VarArgName     string // "" if absent
	KwArgName      string // "" if absent
	VarArgType     Type   // declared element type for *args, Unknown if absent/undeclared
	KwArgType      Type   // declared element type for **kwargs, Unknown if absent/undeclared
}

// Type returns the effective type for parameter i.
func (s *Signature) Type(i int) Type {
	if i < 0 || i >= len(s.EffectiveTypes) {
		return Unknown{}
	}
	return s.EffectiveTypes[i]
}

// VarArgEffectiveType returns the declared *args element type, or
// Unknown if none was declared (including for signatures built
// without the field set at all, e.g. the built-ins preload).
func (s *Signature) VarArgEffectiveType() Type {
	if s.VarArgType == nil {
		return Unknown{}
	}
	return s.VarArgType
}

// KwArgEffectiveType is VarArgEffectiveType's **kwargs counterpart.
func (s *Signature) KwArgEffectiveType() Type {
	if s.KwArgType == nil {
		return Unknown{}
	}
	return s.KwArgType
}

// ByName returns the effective type declared for a named parameter.
func (s *Signature) ByName(name string) (Type, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Type(i), true
		}
	}
	return nil, false
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Names))
	for i, n := range s.Names {
		suffix := ""
		if i >= s.MinCount {
			suffix = "?"
		}
		parts[i] = n + ":" + s.Type(i).String() + suffix
	}
	if s.VarArgName != "" {
		parts = append(parts, "*"+s.VarArgName)
	}
	if s.KwArgName != "" {
		parts = append(parts, "**"+s.KwArgName)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// CopyWithoutFirstArgument yields a signature suitable for a bound
// method, dropping `self`.
func (s *Signature) CopyWithoutFirstArgument() *Signature {
	if len(s.Names) == 0 {
		return &Signature{}
	}
	drop := func(xs []Type) []Type {
		if len(xs) == 0 {
			return xs
		}
		return xs[1:]
	}
	min := s.MinCount - 1
	if min < 0 {
		min = 0
	}
	return &Signature{
		Names:          s.Names[1:],
		DeclaredTypes:  drop(s.DeclaredTypes),
		DefaultTypes:   drop(s.DefaultTypes),
		EffectiveTypes: drop(s.EffectiveTypes),
		MinCount:       min,
		VarArgName:     s.VarArgName,
		KwArgName:      s.KwArgName,
		VarArgType:     s.VarArgType,
		KwArgType:      s.KwArgType,
	}
}
