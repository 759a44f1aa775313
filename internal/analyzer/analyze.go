package analyzer

import (
	"fmt"
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
	"strings"
)

// Result is what one analysis run produces: the top-level scope's
// final bindings and the collected warning stream.
type Result struct {
	TopLevel    *typesystem.Scope
	Warnings    []diagnostics.Warning
	Annotations []diagnostics.Annotation
	RunID       string
}

// Analyze walks program's statements under a fresh scope layered on
// top of builtins, recovering the single class of fatal error (an
// unrecognized assignment target or statement kind) rather than
// letting it escape as a panic.
func Analyze(program *ast.Program, builtins *typesystem.Scope) (res Result, err error) {
	ctx := context.New(builtins)
	ctx.BeginScope()
	v := NewVisitor(ctx)

	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*fatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	v.VisitBody(program.Statements)
	top := ctx.EndScope()

	return Result{
		TopLevel:    top,
		Warnings:    v.Warnings.All(),
		Annotations: v.Warnings.Annotations(),
		RunID:       v.Warnings.RunID.String(),
	}, nil
}

// FormatAnnotation renders one (filepath, line, column, name,
// type-label) line of the `-annotate` dump.
func FormatAnnotation(file string, a diagnostics.Annotation) string {
	return fmt.Sprintf("%s:%d:%d %s %s", file, a.Line, a.Column, a.Name, a.Type)
}

// DumpScope renders scope as one `name type[ value]` line per symbol,
// sorted by name, omitting the value when it is Unknown.
func DumpScope(scope *typesystem.Scope) string {
	var b strings.Builder
	for _, name := range scope.SortedNames() {
		sym, _ := scope.Get(name)
		line := fmt.Sprintf("%s %s", name, sym.EffectiveType())
		if !values.IsUnknown(sym.Value) {
			line += " " + sym.Value.String()
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWarning renders one warning-stream line.
func FormatWarning(file string, w diagnostics.Warning) string {
	s := fmt.Sprintf("%s:%d %s %q", file, w.Pos.Line, w.Category, w.Label)
	if w.Detail != "" {
		s += fmt.Sprintf(" (%s)", w.Detail)
	}
	return s
}
