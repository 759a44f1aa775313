// Package builtins implements the built-ins preload: it reads a YAML
// description of built-in function/type signatures and installs them
// into scope 0.
package builtins

import (
	"fmt"
	"github.com/vela-lang/vela/internal/config"
	"github.com/vela-lang/vela/internal/typesystem"
	"gopkg.in/yaml.v3"
	"os"
)

// Spec is the top-level shape of a builtins YAML description.
type Spec struct {
	Functions []FunctionSpec `yaml:"functions"`
	Types     []string       `yaml:"types"`
}

// FunctionSpec describes one built-in callable's signature.
type FunctionSpec struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Returns string   `yaml:"returns"`
	VarArg  string   `yaml:"vararg,omitempty"`
}

// Load reads path and parses it as a Spec.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading builtins %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing builtins %s: %w", path, err)
	}
	return &spec, nil
}

// typeByName resolves one of the builtins YAML's scalar type names to a
// typesystem.Type. Unrecognized names (including compound ones this
// format doesn't model) resolve to Unknown rather than failing the
// whole preload.
func typeByName(name string) typesystem.Type {
	switch name {
	case "Num":
		return typesystem.Num{}
	case "Str":
		return typesystem.Str{}
	case "Bool":
		return typesystem.Bool{}
	case "NoneType":
		return typesystem.NoneType{}
	case "List":
		return typesystem.List{Item: typesystem.Unknown{}}
	case "Set":
		return typesystem.Set{Item: typesystem.Unknown{}}
	case "Dict":
		return typesystem.Dict{Key: typesystem.Unknown{}, Value: typesystem.Unknown{}}
	case "BaseTuple":
		return typesystem.BaseTuple{}
	default:
		return typesystem.Unknown{}
	}
}

// noopEvaluator lets a built-in Function be called without ever
// re-analyzing a body; every call reports the declared return type.
type noopEvaluator struct{ ret typesystem.Type }

func (e noopEvaluator) Evaluate(typesystem.AttrScope) (typesystem.Type, any) { return e.ret, nil }

// Populate installs spec's functions into scope, then binds
// None, True, False to NoneType, Bool, Bool regardless of what the
// file declared. spec.Types is not read: no type names are bound.
func Populate(scope *typesystem.Scope, spec *Spec) {
	for _, fn := range spec.Functions {
		names := make([]string, len(fn.Params))
		declared := make([]typesystem.Type, len(fn.Params))
		for i, p := range fn.Params {
			names[i] = fmt.Sprintf("arg%d", i)
			declared[i] = typeByName(p)
		}
		sig := &typesystem.Signature{
			Names:          names,
			DeclaredTypes:  declared,
			DefaultTypes:   declared,
			EffectiveTypes: declared,
			MinCount:       len(names),
			VarArgName:     fn.VarArg,
		}
		ret := typeByName(fn.Returns)
		scope.Add(typesystem.NewSymbol(fn.Name, typesystem.Function{
			Signature:  sig,
			ReturnType: ret,
			Evaluator:  noopEvaluator{ret: ret},
		}))
	}

	scope.Add(typesystem.NewSymbol(config.NoneName, typesystem.NoneType{}))
	scope.Add(typesystem.NewSymbol(config.TrueName, typesystem.Bool{}))
	scope.Add(typesystem.NewSymbol(config.FalseName, typesystem.Bool{}))
}

// LoadAndPopulate is the convenience entrypoint `cmd/velac` calls: read
// path (falling back to an empty built-ins set if it does not exist;
// None/True/False are always bound) and return a populated scope 0.
func LoadAndPopulate(path string) (*typesystem.Scope, error) {
	scope := typesystem.NewScope()
	spec := &Spec{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			spec = loaded
		}
	}
	Populate(scope, spec)
	return scope, nil
}
