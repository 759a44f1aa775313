package values

import "testing"

func TestNumStringIntegerVsFloat(t *testing.T) {
	tests := []struct {
		n    Num
		want string
	}{
		{Num(3), "3"},
		{Num(-2), "-2"},
		{Num(0), "0"},
		{Num(3.5), "3.5"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("Num(%v).String() = %q, want %q", float64(tt.n), got, tt.want)
		}
	}
}

func TestBoolString(t *testing.T) {
	if Bool(true).String() != "True" {
		t.Errorf("Bool(true).String() = %q, want True", Bool(true).String())
	}
	if Bool(false).String() != "False" {
		t.Errorf("Bool(false).String() = %q, want False", Bool(false).String())
	}
}

func TestIsUnknown(t *testing.T) {
	if !IsUnknown(nil) {
		t.Errorf("IsUnknown(nil) = false, want true")
	}
	if !IsUnknown(Unknown{}) {
		t.Errorf("IsUnknown(Unknown{}) = false, want true")
	}
	if IsUnknown(Num(1)) {
		t.Errorf("IsUnknown(Num(1)) = true, want false")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Num(1), Num(1)) {
		t.Errorf("Equal(Num(1), Num(1)) = false, want true")
	}
	if Equal(Num(1), Str("1")) {
		t.Errorf("Equal(Num(1), Str(\"1\")) = true, want false")
	}
	if Equal(Unknown{}, Unknown{}) {
		t.Errorf("Equal(Unknown, Unknown) = true, want false: Unknown is never equal to anything")
	}
	a := List{Num(1), Str("x")}
	b := List{Num(1), Str("x")}
	if !Equal(a, b) {
		t.Errorf("Equal(%s, %s) = false, want true", a, b)
	}
	c := List{Num(1)}
	if Equal(a, c) {
		t.Errorf("Equal(%s, %s) = true, want false (different length)", a, c)
	}
}

func TestDictGet(t *testing.T) {
	d := Dict{{Key: Str("a"), Value: Num(1)}, {Key: Str("b"), Value: Num(2)}}
	v, ok := d.Get(Str("b"))
	if !ok || !Equal(v, Num(2)) {
		t.Errorf("Dict.Get(\"b\") = %v, %v; want Num(2), true", v, ok)
	}
	if _, ok := d.Get(Str("z")); ok {
		t.Errorf("Dict.Get(\"z\") found a value, want absent")
	}
}

func TestDictString(t *testing.T) {
	d := Dict{{Key: Str("a"), Value: Num(1)}}
	want := "{a: 1}"
	if got := d.String(); got != want {
		t.Errorf("Dict.String() = %q, want %q", got, want)
	}
}

func TestSetStringSortsMembers(t *testing.T) {
	s := Set{Str("b"), Str("a")}
	want := "{a, b}"
	if got := s.String(); got != want {
		t.Errorf("Set.String() = %q, want %q", got, want)
	}
}
