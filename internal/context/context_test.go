package context

import (
	"github.com/vela-lang/vela/internal/typesystem"
	"testing"
)

func sym(name string, t typesystem.Type) *typesystem.Symbol {
	return typesystem.NewSymbol(name, t)
}

func TestLookupWalksInnermostOutward(t *testing.T) {
	base := typesystem.NewScope()
	base.Add(sym("x", typesystem.Num{}))
	ctx := New(base)

	ctx.BeginScope()
	ctx.Add(sym("x", typesystem.Str{}))

	got, ok := ctx.Get("x")
	if !ok || !typesystem.Equal(got.EffectiveType(), typesystem.Str{}) {
		t.Fatalf("Get(x) = %v, %v; want the innermost Str binding", got, ok)
	}

	ctx.EndScope()
	got, ok = ctx.Get("x")
	if !ok || !typesystem.Equal(got.EffectiveType(), typesystem.Num{}) {
		t.Fatalf("Get(x) after EndScope = %v, %v; want the builtins Num binding", got, ok)
	}
}

func TestEndScopeCannotPopBuiltins(t *testing.T) {
	ctx := New(nil)
	defer func() {
		if recover() == nil {
			t.Errorf("EndScope on the last scope should panic")
		}
	}()
	ctx.EndScope()
}

func TestCopySharesScopePointers(t *testing.T) {
	ctx := New(nil)
	ctx.BeginScope()
	ctx.Add(sym("x", typesystem.Num{}))

	clone := ctx.Copy()
	clone.Add(sym("y", typesystem.Str{}))

	if _, ok := ctx.Get("y"); !ok {
		t.Errorf("mutation through a copy should be visible on the original (shared scope pointers)")
	}
}

func TestExtendedContextOverlayShadowsBase(t *testing.T) {
	base := typesystem.NewScope()
	base.Add(sym("x", typesystem.Num{}))
	ctx := New(base)

	ext := ctx.Overlay()
	ext.Add(sym("x", typesystem.Str{}))

	got, ok := ext.Get("x")
	if !ok || !typesystem.Equal(got.EffectiveType(), typesystem.Str{}) {
		t.Fatalf("Get(x) = %v, %v; want the overlay's Str binding", got, ok)
	}

	if _, ok := ctx.Get("x"); !ok {
		t.Fatalf("base context lost its own binding")
	}
	if baseSym, _ := ctx.Get("x"); !typesystem.Equal(baseSym.EffectiveType(), typesystem.Num{}) {
		t.Errorf("overlay mutated the frozen base")
	}
}

func TestExtendedContextReadsThroughToBase(t *testing.T) {
	base := typesystem.NewScope()
	base.Add(sym("y", typesystem.Bool{}))
	ctx := New(base)
	ext := ctx.Overlay()

	got, ok := ext.Get("y")
	if !ok || !typesystem.Equal(got.EffectiveType(), typesystem.Bool{}) {
		t.Fatalf("Get(y) = %v, %v; want the base's Bool binding", got, ok)
	}
}

func TestExtendedContextCopyPanics(t *testing.T) {
	ctx := New(nil)
	ext := ctx.Overlay()
	defer func() {
		if recover() == nil {
			t.Errorf("ExtendedContext.Copy should panic")
		}
	}()
	ext.Copy()
}
