package staticeval

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/context"
	"github.com/vela-lang/vela/internal/typesystem"
	"github.com/vela-lang/vela/internal/values"
	"testing"
)

func freshCtx() *context.ExtendedContext {
	return context.New(nil).Overlay()
}

func TestEvaluateArithmetic(t *testing.T) {
	// 2 + 3 * 4
	node := &ast.BinOp{
		Op:   ast.Add,
		Left: &ast.Num{Value: 2},
		Right: &ast.BinOp{
			Op:    ast.Mult,
			Left:  &ast.Num{Value: 3},
			Right: &ast.Num{Value: 4},
		},
	}
	got := Evaluate(node, freshCtx())
	want := values.Num(14)
	if !values.Equal(got, want) {
		t.Errorf("Evaluate(2 + 3 * 4) = %s, want %s", got, want)
	}
}

func TestEvaluateDivisionByZeroIsUnknown(t *testing.T) {
	node := &ast.BinOp{Op: ast.Div, Left: &ast.Num{Value: 1}, Right: &ast.Num{Value: 0}}
	got := Evaluate(node, freshCtx())
	if !values.IsUnknown(got) {
		t.Errorf("Evaluate(1 / 0) = %s, want Unknown", got)
	}
}

func TestEvaluateNameLooksUpStaticValue(t *testing.T) {
	ctx := freshCtx()
	ctx.Add(typesystem.NewSymbol("x", typesystem.Num{}))
	sym, _ := ctx.Get("x")
	sym.Value = values.Num(7)

	got := Evaluate(&ast.Name{Id: "x"}, ctx)
	if !values.Equal(got, values.Num(7)) {
		t.Errorf("Evaluate(x) = %s, want 7", got)
	}
}

func TestEvaluateUndefinedNameIsUnknown(t *testing.T) {
	got := Evaluate(&ast.Name{Id: "nope"}, freshCtx())
	if !values.IsUnknown(got) {
		t.Errorf("Evaluate(nope) = %s, want Unknown", got)
	}
}

func TestEvaluateNoneTrueFalseLiterals(t *testing.T) {
	ctx := freshCtx()
	if got := Evaluate(&ast.Name{Id: "None"}, ctx); !values.Equal(got, values.None{}) {
		t.Errorf("Evaluate(None) = %s, want None", got)
	}
	if got := Evaluate(&ast.Name{Id: "True"}, ctx); !values.Equal(got, values.Bool(true)) {
		t.Errorf("Evaluate(True) = %s, want True", got)
	}
	if got := Evaluate(&ast.Name{Id: "False"}, ctx); !values.Equal(got, values.Bool(false)) {
		t.Errorf("Evaluate(False) = %s, want False", got)
	}
}

func TestEvaluateCompareChain(t *testing.T) {
	// 1 < 2 < 3
	node := &ast.Compare{
		Left:        &ast.Num{Value: 1},
		Ops:         []ast.CompareOpKind{ast.Lt, ast.Lt},
		Comparators: []ast.Expression{&ast.Num{Value: 2}, &ast.Num{Value: 3}},
	}
	got := Evaluate(node, freshCtx())
	if !values.Equal(got, values.Bool(true)) {
		t.Errorf("Evaluate(1 < 2 < 3) = %s, want True", got)
	}
}

func TestEvaluateCompareChainShortCircuitsFalse(t *testing.T) {
	// 1 < 2 < 0
	node := &ast.Compare{
		Left:        &ast.Num{Value: 1},
		Ops:         []ast.CompareOpKind{ast.Lt, ast.Lt},
		Comparators: []ast.Expression{&ast.Num{Value: 2}, &ast.Num{Value: 0}},
	}
	got := Evaluate(node, freshCtx())
	if !values.Equal(got, values.Bool(false)) {
		t.Errorf("Evaluate(1 < 2 < 0) = %s, want False", got)
	}
}

func TestEvaluateListLit(t *testing.T) {
	node := &ast.ListLit{Elts: []ast.Expression{&ast.Num{Value: 1}, &ast.Num{Value: 2}}}
	got := Evaluate(node, freshCtx())
	want := values.List{values.Num(1), values.Num(2)}
	if !values.Equal(got, want) {
		t.Errorf("Evaluate([1, 2]) = %s, want %s", got, want)
	}
}

func TestEvaluateStrConcat(t *testing.T) {
	node := &ast.BinOp{Op: ast.Add, Left: &ast.Str{Value: "a"}, Right: &ast.Str{Value: "b"}}
	got := Evaluate(node, freshCtx())
	if !values.Equal(got, values.Str("ab")) {
		t.Errorf("Evaluate(\"a\" + \"b\") = %s, want ab", got)
	}
}

func TestComparableTypes(t *testing.T) {
	if !ComparableTypes(typesystem.Num{}, typesystem.Num{}) {
		t.Errorf("Num, Num should be comparable")
	}
	if !ComparableTypes(typesystem.Str{}, typesystem.Str{}) {
		t.Errorf("Str, Str should be comparable")
	}
	if ComparableTypes(typesystem.Num{}, typesystem.Str{}) {
		t.Errorf("Num, Str should not be comparable")
	}
}

func TestUnifiableTypes(t *testing.T) {
	if !UnifiableTypes(typesystem.Num{}, typesystem.Str{}) {
		t.Errorf("Num, Str should be unifiable")
	}
	if UnifiableTypes(typesystem.Unknown{}, typesystem.Num{}) {
		t.Errorf("Unknown should not be unifiable")
	}
}
