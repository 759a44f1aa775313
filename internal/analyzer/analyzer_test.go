package analyzer

import (
	"github.com/vela-lang/vela/internal/builtins"
	"github.com/vela-lang/vela/internal/diagnostics"
	"github.com/vela-lang/vela/internal/parser"
	"github.com/vela-lang/vela/internal/typesystem"
	"testing"
)

// analyzeSource parses and analyzes src against a builtins scope holding
// only None, True and False,
// failing the test immediately on a parse or fatal analysis error.
func analyzeSource(t *testing.T, src string) Result {
	t.Helper()
	prog, err := parser.ParseProgram("test.vl", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	top := typesystem.NewScope()
	builtins.Populate(top, &builtins.Spec{})
	res, err := Analyze(prog, top)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return res
}

func hasCategory(res Result, cat diagnostics.Category) bool {
	for _, w := range res.Warnings {
		if w.Category == cat {
			return true
		}
	}
	return false
}

func countCategory(res Result, cat diagnostics.Category) int {
	n := 0
	for _, w := range res.Warnings {
		if w.Category == cat {
			n++
		}
	}
	return n
}

func TestReassignmentSameScope(t *testing.T) {
	res := analyzeSource(t, "x = 1\nx = \"a\"\n")
	if !hasCategory(res, diagnostics.Reassignment) {
		t.Errorf("expected reassignment warning, got %v", res.Warnings)
	}
	if !hasCategory(res, diagnostics.TypeChange) {
		t.Errorf("expected type-change warning, got %v", res.Warnings)
	}
	sym, ok := res.TopLevel.Get("x")
	if !ok {
		t.Fatalf("x not bound in top-level scope")
	}
	if !typesystem.Equal(sym.EffectiveType(), typesystem.Str{}) {
		t.Errorf("x has type %s, want Str", sym.EffectiveType())
	}
}

func TestShadowingAcrossScopesIsNotReassignment(t *testing.T) {
	res := analyzeSource(t, "x = 1\nfor i in [1, 2, 3] {\n    x = \"a\"\n}\n")
	if hasCategory(res, diagnostics.Reassignment) {
		t.Errorf("shadowing in a nested scope must not be reported as reassignment: %v", res.Warnings)
	}
}

func TestUndefinedName(t *testing.T) {
	res := analyzeSource(t, "y = x\n")
	if !hasCategory(res, diagnostics.Undefined) {
		t.Errorf("expected undefined warning, got %v", res.Warnings)
	}
}

func TestForLoopInfersContainerItemType(t *testing.T) {
	res := analyzeSource(t, "total = 0\nfor n in [1, 2, 3] {\n    total = total + n\n}\n")
	sym, ok := res.TopLevel.Get("total")
	if !ok {
		t.Fatalf("total not bound")
	}
	if !typesystem.Equal(sym.EffectiveType(), typesystem.Num{}) {
		t.Errorf("total has type %s, want Num", sym.EffectiveType())
	}
}

func TestConstantIfCondition(t *testing.T) {
	res := analyzeSource(t, "if True {\n    x = 1\n}\n")
	if !hasCategory(res, diagnostics.ConstantIfCondition) {
		t.Errorf("expected constant-if-condition warning, got %v", res.Warnings)
	}
}

func TestDuplicateWarningsAreDeduplicated(t *testing.T) {
	res := analyzeSource(t, "x = 1\nx = \"a\"\nx = \"b\"\n")
	if n := countCategory(res, diagnostics.Reassignment); n != 2 {
		t.Errorf("got %d reassignment warnings, want 2 (one per rebind, deduped by line+category): %v", n, res.Warnings)
	}
}

func TestRecursiveFunctionDoesNotWarnUndefined(t *testing.T) {
	res := analyzeSource(t, "def loop(n) {\n    return loop(n)\n}\n")
	if hasCategory(res, diagnostics.Undefined) || hasCategory(res, diagnostics.UndefinedFunction) {
		t.Errorf("recursive self-reference must resolve, got %v", res.Warnings)
	}
	sym, ok := res.TopLevel.Get("loop")
	if !ok {
		t.Fatalf("loop not bound")
	}
	fn, ok := sym.EffectiveType().(typesystem.Function)
	if !ok {
		t.Fatalf("loop has type %s, want Function", sym.EffectiveType())
	}
	if !typesystem.Equal(fn.ReturnType, typesystem.Unknown{}) {
		t.Errorf("recursive call should bottom out at Unknown, got %s", fn.ReturnType)
	}
}

func TestConstructorCallTypesAsInstance(t *testing.T) {
	src := "class Point {\n" +
		"    def __init__(self, x) {\n" +
		"        self.x = x\n" +
		"    }\n" +
		"    def coord(self) {\n" +
		"        return self.x\n" +
		"    }\n" +
		"}\n" +
		"p = Point(3)\n" +
		"q = p.coord()\n"
	res := analyzeSource(t, src)
	if hasCategory(res, diagnostics.NotAFunction) || hasCategory(res, diagnostics.Undefined) {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	sym, ok := res.TopLevel.Get("p")
	if !ok {
		t.Fatalf("p not bound")
	}
	inst, ok := sym.EffectiveType().(typesystem.Instance)
	if !ok {
		t.Fatalf("p has type %s, want Instance", sym.EffectiveType())
	}
	if inst.ClassName != "Point" {
		t.Errorf("p is Instance(%s), want Instance(Point)", inst.ClassName)
	}
	if _, ok := inst.Attributes.GetType("coord"); !ok {
		t.Errorf("instance should expose the bound method coord")
	}
}

func TestOptionalRefinementInThenBranch(t *testing.T) {
	src := "def pick(a) {\n" +
		"    if a > 1 {\n" +
		"        return 3\n" +
		"    }\n" +
		"    return None\n" +
		"}\n" +
		"x = pick(2)\n" +
		"if x is not None {\n" +
		"    y = x + 1\n" +
		"}\n"
	res := analyzeSource(t, src)
	if hasCategory(res, diagnostics.TypeError) {
		t.Fatalf("refined x must add cleanly, got %v", res.Warnings)
	}
	xSym, ok := res.TopLevel.Get("x")
	if !ok {
		t.Fatalf("x not bound")
	}
	want := typesystem.NewMaybe(typesystem.Num{})
	if !typesystem.Equal(xSym.EffectiveType(), want) {
		t.Errorf("x has type %s, want %s", xSym.EffectiveType(), want)
	}
	ySym, ok := res.TopLevel.Get("y")
	if !ok {
		t.Fatalf("y not bound")
	}
	if !typesystem.Equal(ySym.EffectiveType(), typesystem.Num{}) {
		t.Errorf("y has type %s, want Num", ySym.EffectiveType())
	}
}
