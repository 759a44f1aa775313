// Package diagnostics collects and renders the warnings the analyzer
// emits: a closed category enum, one Warning per finding, and a
// Collector that deduplicates by position+category so re-analysis
// passes never report the same finding twice.
package diagnostics

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/vela-lang/vela/internal/ast"
	"sort"
)

// Category is one of the closed set of warning kinds.
type Category string

const (
	Reassignment             Category = "reassignment"
	TypeChange               Category = "type-change"
	ConditionallyAssigned    Category = "conditionally-assigned"
	ConditionalType          Category = "conditional-type"
	ConditionalReturnType    Category = "conditional-return-type"
	MultipleReturnTypes      Category = "multiple-return-types"
	TypeError                Category = "type-error"
	Undefined                Category = "undefined"
	UndefinedFunction        Category = "undefined-function"
	NotAFunction             Category = "not-a-function"
	NotAnInstance            Category = "not-an-instance"
	MissingArgument          Category = "missing-argument"
	TooManyArguments         Category = "too-many-arguments"
	ExtraKeyword             Category = "extra-keyword"
	InvalidVarargType        Category = "invalid-vararg-type"
	InvalidKwargType         Category = "invalid-kwarg-type"
	DefaultArgumentTypeError Category = "default-argument-type-error"
	ComparisonOperatorChain  Category = "comparison-operator-chaining"
	InOperatorChaining       Category = "in-operator-chaining"
	InOperatorArgNotListDict Category = "in-operator-argument-not-list-or-dict"
	IsOperatorChaining       Category = "is-operator-chaining"
	ConstantIfCondition      Category = "constant-if-condition"
	InconsistentTypes        Category = "inconsistent-types"
	OverlappingClassNames    Category = "overlapping-class-names"
	Delete                   Category = "delete"
	ImportFailed             Category = "import-failed"
	NonGlobalImport          Category = "non-global-import"
)

// Annotation records the resolved type of one Name occurrence;
// filepath is filled in by the caller rendering the final report,
// since the analyzer itself only ever sees one file at a time.
type Annotation struct {
	Line   int
	Column int
	Name   string
	Type   string
}

// Warning is one reported finding.
type Warning struct {
	Pos      ast.Pos
	Category Category
	Label    string // rendered node label, e.g. a name or call description
	Detail   string // optional extra context, empty if unused
}

func (w Warning) key() string {
	return fmt.Sprintf("%d:%d:%s", w.Pos.Line, w.Pos.Column, w.Category)
}

// Collector accumulates Warnings, silently dropping ones that repeat
// an already-reported (line, column, category) triple. Each Collector
// carries a run ID so repeated invocations of the analyzer (e.g. from
// an editor integration re-running `velac` on every keystroke) can be
// correlated in logs without re-running the whole process.
type Collector struct {
	RunID       uuid.UUID
	seen        map[string]bool
	items       []Warning
	annotations []Annotation
}

// NewCollector returns an empty Collector tagged with a fresh run ID.
func NewCollector() *Collector {
	return &Collector{RunID: uuid.New(), seen: make(map[string]bool)}
}

// Add records w unless its (position, category) was already reported.
func (c *Collector) Add(w Warning) {
	k := w.key()
	if c.seen[k] {
		return
	}
	c.seen[k] = true
	c.items = append(c.items, w)
}

// Report is a convenience wrapper building and adding a Warning.
func (c *Collector) Report(pos ast.Pos, category Category, label, detail string) {
	c.Add(Warning{Pos: pos, Category: category, Label: label, Detail: detail})
}

// Annotate records a resolved Name occurrence; unlike Add, every
// occurrence is kept, since two annotations
// at the same position with different names never happen in practice
// and deduping would only hide genuine re-visits of the same node
// under a different expected type.
func (c *Collector) Annotate(pos ast.Pos, name, typeLabel string) {
	c.annotations = append(c.annotations, Annotation{Line: pos.Line, Column: pos.Column, Name: name, Type: typeLabel})
}

// Annotations returns every recorded annotation in source position
// order, matching All's determinism requirement.
func (c *Collector) Annotations() []Annotation {
	out := make([]Annotation, len(c.annotations))
	copy(out, c.annotations)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// All returns every recorded warning, ordered by source position then
// category for deterministic output.
func (c *Collector) All() []Warning {
	out := make([]Warning, len(c.items))
	copy(out, c.items)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.Category < b.Category
	})
	return out
}

// Len reports how many distinct warnings have been collected.
func (c *Collector) Len() int { return len(c.items) }
