package diagnostics

import (
	"github.com/vela-lang/vela/internal/ast"
	"testing"
)

func TestCollectorDedupesByPositionAndCategory(t *testing.T) {
	c := NewCollector()
	pos := ast.Pos{Line: 1, Column: 1}
	c.Report(pos, Reassignment, "x", "")
	c.Report(pos, Reassignment, "x", "a different label changes nothing, the key is position+category")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (duplicate position+category should be dropped)", c.Len())
	}
}

func TestCollectorKeepsDistinctCategoriesAtSamePosition(t *testing.T) {
	c := NewCollector()
	pos := ast.Pos{Line: 1, Column: 1}
	c.Report(pos, Reassignment, "x", "")
	c.Report(pos, TypeChange, "x", "Num -> Str")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCollectorKeepsDistinctPositionsSameCategory(t *testing.T) {
	c := NewCollector()
	c.Report(ast.Pos{Line: 1, Column: 1}, Reassignment, "x", "")
	c.Report(ast.Pos{Line: 2, Column: 1}, Reassignment, "x", "")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestAllOrdersByPositionThenCategory(t *testing.T) {
	c := NewCollector()
	c.Report(ast.Pos{Line: 2, Column: 1}, Reassignment, "a", "")
	c.Report(ast.Pos{Line: 1, Column: 5}, TypeChange, "b", "")
	c.Report(ast.Pos{Line: 1, Column: 1}, Undefined, "c", "")

	all := c.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d warnings, want 3", len(all))
	}
	if all[0].Label != "c" || all[1].Label != "b" || all[2].Label != "a" {
		t.Errorf("All() order = [%s, %s, %s], want [c, b, a]", all[0].Label, all[1].Label, all[2].Label)
	}
}

func TestAnnotationsOrderedByPosition(t *testing.T) {
	c := NewCollector()
	c.Annotate(ast.Pos{Line: 3, Column: 1}, "z", "Num")
	c.Annotate(ast.Pos{Line: 1, Column: 1}, "a", "Str")

	ann := c.Annotations()
	if len(ann) != 2 || ann[0].Name != "a" || ann[1].Name != "z" {
		t.Errorf("Annotations() = %+v, want [a, z] in order", ann)
	}
}

func TestAnnotateNeverDedupes(t *testing.T) {
	c := NewCollector()
	pos := ast.Pos{Line: 1, Column: 1}
	c.Annotate(pos, "x", "Num")
	c.Annotate(pos, "x", "Str")
	if len(c.Annotations()) != 2 {
		t.Errorf("Annotations() should keep every recorded occurrence, even duplicates at the same position")
	}
}
