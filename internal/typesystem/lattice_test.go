package typesystem

import "testing"

// sampleTypes covers every lattice case at least once, used by the
// quantified-property tests below.
func sampleTypes() []Type {
	return []Type{
		Unknown{},
		NoneType{},
		Bool{},
		Num{},
		Str{},
		List{Item: Num{}},
		Set{Item: Str{}},
		Dict{Key: Str{}, Value: Num{}},
		Tuple{Items: []Type{Num{}, Str{}}},
		Maybe{Inner: Num{}},
		Union{Members: []Type{Num{}, Str{}}},
	}
}

func TestUnifyCommutative(t *testing.T) {
	types := sampleTypes()
	for _, a := range types {
		for _, b := range types {
			ab := Unify(a, b)
			ba := Unify(b, a)
			if !Equal(ab, ba) {
				t.Errorf("Unify(%s, %s) = %s, Unify(%s, %s) = %s: not commutative", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestIntersectCommutative(t *testing.T) {
	types := sampleTypes()
	for _, a := range types {
		for _, b := range types {
			ab := Intersect(a, b)
			ba := Intersect(b, a)
			if (ab == nil) != (ba == nil) {
				t.Errorf("Intersect(%s, %s) = %v, Intersect(%s, %s) = %v: not commutative", a, b, ab, b, a, ba)
				continue
			}
			if ab != nil && !Equal(ab, ba) {
				t.Errorf("Intersect(%s, %s) = %s, Intersect(%s, %s) = %s: not commutative", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestSubsetUnknownIsTop(t *testing.T) {
	for _, a := range sampleTypes() {
		if !Subset(a, Unknown{}) {
			t.Errorf("Subset(%s, Unknown) = false, want true", a)
		}
	}
}

func TestSubsetOfUnknownOnlyUnknownIsSubset(t *testing.T) {
	for _, a := range sampleTypes() {
		got := Subset(Unknown{}, a)
		want := Equal(a, Unknown{})
		if got != want {
			t.Errorf("Subset(Unknown, %s) = %v, want %v", a, got, want)
		}
	}
}

func TestUnifyIdempotent(t *testing.T) {
	for _, a := range sampleTypes() {
		got := Unify(a, a)
		if !Equal(got, a) {
			t.Errorf("Unify(%s, %s) = %s, want %s", a, a, got, a)
		}
	}
}

func TestIntersectIdempotent(t *testing.T) {
	for _, a := range sampleTypes() {
		got := Intersect(a, a)
		if got == nil || !Equal(got, a) {
			t.Errorf("Intersect(%s, %s) = %v, want %s", a, a, got, a)
		}
	}
}

func TestSubsetOfUnify(t *testing.T) {
	types := sampleTypes()
	for _, a := range types {
		for _, b := range types {
			u := Unify(a, b)
			if !Subset(a, u) {
				t.Errorf("Subset(%s, Unify(%s, %s)=%s) = false, want true", a, a, b, u)
			}
			if !Subset(b, u) {
				t.Errorf("Subset(%s, Unify(%s, %s)=%s) = false, want true", b, a, b, u)
			}
		}
	}
}

func TestUnifyWithNone(t *testing.T) {
	tests := []struct {
		name string
		a    Type
		want Type
	}{
		{"None+None", NoneType{}, NoneType{}},
		{"None+Num", Num{}, Maybe{Inner: Num{}}},
		{"None+Maybe(Num)", Maybe{Inner: Num{}}, Maybe{Inner: Num{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unify(NoneType{}, tt.a)
			if !Equal(got, tt.want) {
				t.Errorf("Unify(NoneType, %s) = %s, want %s", tt.a, got, tt.want)
			}
		})
	}
}

func TestUnionInvariants(t *testing.T) {
	// A union with a subsumed member collapses it away.
	reduced := Reduce([]Type{Num{}, Union{Members: []Type{Num{}, Str{}}}})
	if len(reduced) != 2 {
		t.Fatalf("Reduce produced %d members, want 2: %v", len(reduced), reduced)
	}

	// Maybe(Maybe(T)) collapses to Maybe(T), whether flattened at
	// construction (NewMaybe) or produced by unifying two Maybes whose
	// nesting would otherwise stack up.
	if got := NewMaybe(Maybe{Inner: Num{}}); !Equal(got, Maybe{Inner: Num{}}) {
		t.Errorf("NewMaybe(Maybe(Num)) = %s, want Maybe(Num)", got)
	}
	got := Unify(Maybe{Inner: Num{}}, Maybe{Inner: Maybe{Inner: Num{}}})
	if !Equal(got, Maybe{Inner: Num{}}) {
		t.Errorf("Unify(Maybe(Num), Maybe(Maybe(Num))) = %s, want Maybe(Num)", got)
	}

	// A singleton union collapses to its member.
	single := Unify(Num{}, Num{})
	if _, ok := single.(Union); ok {
		t.Errorf("Unify(Num, Num) produced a Union, want a bare Num")
	}
}

func TestSubsetContainers(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"List(Num) <: List(Num)", List{Item: Num{}}, List{Item: Num{}}, true},
		{"List(Num) !<: List(Str)", List{Item: Num{}}, List{Item: Str{}}, false},
		{"Tuple(Num,Str) <: BaseTuple", Tuple{Items: []Type{Num{}, Str{}}}, BaseTuple{}, true},
		{"NoneType <: Maybe(Num)", NoneType{}, Maybe{Inner: Num{}}, true},
		{"Num <: Maybe(Num)", Num{}, Maybe{Inner: Num{}}, true},
		{"Str !<: Maybe(Num)", Str{}, Maybe{Inner: Num{}}, false},
		{"Maybe(Num) !<: Num", Maybe{Inner: Num{}}, Num{}, false},
		{"Tuple arity mismatch", Tuple{Items: []Type{Num{}}}, Tuple{Items: []Type{Num{}, Str{}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subset(tt.a, tt.b); got != tt.want {
				t.Errorf("Subset(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIntersectContainers(t *testing.T) {
	got := Intersect(List{Item: Unknown{}}, List{Item: Num{}})
	want := List{Item: Num{}}
	if got == nil || !Equal(got, want) {
		t.Errorf("Intersect(List(Unknown), List(Num)) = %v, want %s", got, want)
	}

	if Intersect(List{Item: Num{}}, Set{Item: Num{}}) != nil {
		t.Errorf("Intersect(List(Num), Set(Num)) should be nil (no shared inhabitant)")
	}

	got = Intersect(Maybe{Inner: Num{}}, NoneType{})
	if !Equal(got, NoneType{}) {
		t.Errorf("Intersect(Maybe(Num), NoneType) = %v, want NoneType", got)
	}
}

func TestMatchesAnyPattern(t *testing.T) {
	patterns := []Pattern{
		{Num{}, Num{}},
		{Str{}, Str{}},
	}
	if !MatchesAnyPattern([]Type{Num{}, Num{}}, patterns) {
		t.Errorf("expected (Num, Num) to match")
	}
	if !MatchesAnyPattern([]Type{Str{}, Str{}}, patterns) {
		t.Errorf("expected (Str, Str) to match")
	}
	if MatchesAnyPattern([]Type{Num{}, Str{}}, patterns) {
		t.Errorf("expected (Num, Str) to not match")
	}
}
