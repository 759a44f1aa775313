package typesystem

// Equal is structural equality over the lattice.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Num:
		_, ok := b.(Num)
		return ok
	case Str:
		_, ok := b.(Str)
		return ok
	case BaseTuple:
		_, ok := b.(BaseTuple)
		return ok
	case List:
		bv, ok := b.(List)
		return ok && Equal(av.Item, bv.Item)
	case Set:
		bv, ok := b.(Set)
		return ok && Equal(av.Item, bv.Item)
	case Dict:
		bv, ok := b.(Dict)
		return ok && Equal(av.Key, bv.Key) && Equal(av.Value, bv.Value)
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case Maybe:
		bv, ok := b.(Maybe)
		return ok && Equal(av.Inner, bv.Inner)
	case Union:
		bv, ok := b.(Union)
		if !ok || len(av.Members) != len(bv.Members) {
			return false
		}
		for _, m := range av.Members {
			if !memberOf(m, bv.Members) {
				return false
			}
		}
		return true
	case Instance:
		bv, ok := b.(Instance)
		return ok && av.ClassName == bv.ClassName
	case Class:
		bv, ok := b.(Class)
		return ok && av.Name == bv.Name
	case Function:
		_, ok := b.(Function)
		return ok // functions compare by identity-ish shape; no two are "equal" structurally beyond this
	default:
		return false
	}
}

func memberOf(t Type, members []Type) bool {
	for _, m := range members {
		if Equal(t, m) {
			return true
		}
	}
	return false
}

// Subset reports whether every value inhabiting a also inhabits b
//.
func Subset(a, b Type) bool {
	if _, ok := b.(Unknown); ok {
		return true
	}
	if _, ok := a.(Unknown); ok {
		return false
	}
	switch bv := b.(type) {
	case Union:
		for _, m := range bv.Members {
			if Subset(a, m) {
				return true
			}
		}
		// a itself may be a Union: every member of a subset of some member of b
		if au, ok := a.(Union); ok {
			for _, m := range au.Members {
				if !subsetOfAny(m, bv.Members) {
					return false
				}
			}
			return len(au.Members) > 0
		}
		return false
	case Maybe:
		if _, ok := a.(NoneType); ok {
			return true
		}
		if am, ok := a.(Maybe); ok {
			return Subset(am.Inner, bv.Inner)
		}
		return Subset(a, bv.Inner)
	case BaseTuple:
		_, ok := a.(Tuple)
		return ok
	}
	if au, ok := a.(Union); ok {
		for _, m := range au.Members {
			if !Subset(m, b) {
				return false
			}
		}
		return len(au.Members) > 0
	}
	if am, ok := a.(Maybe); ok {
		// Maybe(x) subset of b (non-Maybe, non-Union) only if b accepts both.
		return Subset(NoneType{}, b) && Subset(am.Inner, b)
	}
	switch av := a.(type) {
	case List:
		bv, ok := b.(List)
		return ok && Subset(av.Item, bv.Item)
	case Set:
		bv, ok := b.(Set)
		return ok && Subset(av.Item, bv.Item)
	case Dict:
		bv, ok := b.(Dict)
		return ok && Subset(av.Key, bv.Key) && Subset(av.Value, bv.Value)
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Subset(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

func subsetOfAny(t Type, candidates []Type) bool {
	for _, c := range candidates {
		if Subset(t, c) {
			return true
		}
	}
	return false
}

// Reduce normalizes a flattened member list into a deduplicated,
// subsumption-free set.
func Reduce(members []Type) []Type {
	// flatten nested unions
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if u, ok := m.(Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}
	// dedupe
	unique := make([]Type, 0, len(flat))
	for _, t := range flat {
		if !memberOf(t, unique) {
			unique = append(unique, t)
		}
	}
	// drop members subsumed by another distinct member
	kept := make([]Type, 0, len(unique))
	for i, t := range unique {
		subsumed := false
		for j, other := range unique {
			if i == j {
				continue
			}
			if Subset(t, other) && !Subset(other, t) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, t)
		}
	}
	return kept
}

// Unify computes the least upper bound of a and b.
func Unify(a, b Type) Type {
	if _, ok := a.(Unknown); ok {
		return Unknown{}
	}
	if _, ok := b.(Unknown); ok {
		return Unknown{}
	}
	if Equal(a, b) {
		return a
	}
	// None + T -> Maybe(T); Maybe dominates NoneType.
	_, aNone := a.(NoneType)
	_, bNone := b.(NoneType)
	if aNone && bNone {
		return NoneType{}
	}
	if aNone {
		return unifyWithNone(b)
	}
	if bNone {
		return unifyWithNone(a)
	}
	if am, ok := a.(Maybe); ok {
		return NewMaybe(Unify(am.Inner, stripMaybe(b)))
	}
	if bm, ok := b.(Maybe); ok {
		return NewMaybe(Unify(stripMaybe(a), bm.Inner))
	}

	members := make([]Type, 0, 4)
	if au, ok := a.(Union); ok {
		members = append(members, au.Members...)
	} else {
		members = append(members, a)
	}
	if bu, ok := b.(Union); ok {
		members = append(members, bu.Members...)
	} else {
		members = append(members, b)
	}
	reduced := Reduce(members)
	if len(reduced) == 1 {
		return reduced[0]
	}
	return Union{Members: reduced}
}

func stripMaybe(t Type) Type {
	if m, ok := t.(Maybe); ok {
		return m.Inner
	}
	return t
}

// unifyWithNone: unify(NoneType, a) = a if a = NoneType, else Maybe(a) unless a is
// already Maybe(_), in which case it is returned unchanged.
func unifyWithNone(a Type) Type {
	if m, ok := a.(Maybe); ok {
		return m
	}
	return NewMaybe(a)
}

// Intersect computes the greatest lower bound, or nil if the types
// share no inhabitant.
func Intersect(a, b Type) Type {
	if _, ok := a.(Unknown); ok {
		return b
	}
	if _, ok := b.(Unknown); ok {
		return a
	}
	if Equal(a, b) {
		return a
	}
	if au, ok := a.(Union); ok {
		if bu, ok2 := b.(Union); ok2 {
			var out []Type
			for _, m := range au.Members {
				if subsetOfAny(m, bu.Members) || anyIntersects(m, bu.Members) {
					if in := intersectAgainstSet(m, bu.Members); in != nil {
						out = append(out, in)
					}
				}
			}
			if len(out) == 0 {
				return nil
			}
			reduced := Reduce(out)
			if len(reduced) == 1 {
				return reduced[0]
			}
			return Union{Members: reduced}
		}
		return intersectAgainstSet(b, au.Members)
	}
	if bu, ok := b.(Union); ok {
		return intersectAgainstSet(a, bu.Members)
	}
	if am, ok := a.(Maybe); ok {
		if _, ok2 := b.(NoneType); ok2 {
			return NoneType{}
		}
		if bm, ok2 := b.(Maybe); ok2 {
			in := Intersect(am.Inner, bm.Inner)
			if in == nil {
				return nil
			}
			return NewMaybe(in)
		}
		return Intersect(am.Inner, b)
	}
	if bm, ok := b.(Maybe); ok {
		if _, ok2 := a.(NoneType); ok2 {
			return NoneType{}
		}
		return Intersect(a, bm.Inner)
	}
	switch av := a.(type) {
	case List:
		if bv, ok := b.(List); ok {
			in := Intersect(av.Item, bv.Item)
			if in == nil {
				return nil
			}
			return List{Item: in}
		}
		return nil
	case Set:
		if bv, ok := b.(Set); ok {
			in := Intersect(av.Item, bv.Item)
			if in == nil {
				return nil
			}
			return Set{Item: in}
		}
		return nil
	case Dict:
		if bv, ok := b.(Dict); ok {
			k := Intersect(av.Key, bv.Key)
			v := Intersect(av.Value, bv.Value)
			if k == nil || v == nil {
				return nil
			}
			return Dict{Key: k, Value: v}
		}
		return nil
	case Tuple:
		if bv, ok := b.(Tuple); ok && len(av.Items) == len(bv.Items) {
			items := make([]Type, len(av.Items))
			for i := range av.Items {
				in := Intersect(av.Items[i], bv.Items[i])
				if in == nil {
					return nil
				}
				items[i] = in
			}
			return Tuple{Items: items}
		}
		if _, ok := b.(BaseTuple); ok {
			return av
		}
		return nil
	case BaseTuple:
		if _, ok := b.(Tuple); ok {
			return b
		}
		return nil
	}
	return nil
}

func anyIntersects(t Type, candidates []Type) bool {
	for _, c := range candidates {
		if Intersect(t, c) != nil {
			return true
		}
	}
	return false
}

func intersectAgainstSet(t Type, candidates []Type) Type {
	var out []Type
	for _, c := range candidates {
		if in := Intersect(t, c); in != nil {
			out = append(out, in)
		}
	}
	if len(out) == 0 {
		return nil
	}
	reduced := Reduce(out)
	if len(reduced) == 1 {
		return reduced[0]
	}
	return Union{Members: reduced}
}

// Pattern is one tuple-wise type-signature alternative, tested with
// Subset element-wise.
type Pattern []Type

// MatchesPattern reports whether types satisfies pattern element-wise
// via Subset.
func MatchesPattern(types []Type, pattern Pattern) bool {
	if len(types) != len(pattern) {
		return false
	}
	for i := range types {
		if !Subset(types[i], pattern[i]) {
			return false
		}
	}
	return true
}

// MatchesAnyPattern is the disjunction-of-conjunctions test used to
// check operator signatures against alternative type-tuples.
func MatchesAnyPattern(types []Type, patterns []Pattern) bool {
	for _, p := range patterns {
		if MatchesPattern(types, p) {
			return true
		}
	}
	return false
}
