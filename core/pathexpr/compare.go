package pathexpr

import (
	"cmp"
	"reflect"
	"strings"
	"time"
)

// Kind classifies values for comparison. Values of different kinds are never
// equal; when sorting they are ordered by kind, in declaration order.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindTime
	KindArray
	KindObject
	KindOther
)

// KindOf returns the comparison kind of a value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case time.Time:
		return KindTime
	}
	if _, ok := toNumber(v); ok {
		return KindNumber
	}
	if _, ok := asMap(v); ok {
		return KindObject
	}
	if _, ok := asSequence(v); ok {
		return KindArray
	}
	return KindOther
}

// Equal reports structural equality. Numbers compare by value regardless of
// their Go type, and a time equals a string holding the same RFC3339 instant.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		if ta, tb, ok := timePair(a, b); ok {
			return ta.Equal(tb)
		}
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindNumber:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return na == nb
	case KindTime:
		return a.(time.Time).Equal(b.(time.Time))
	case KindArray:
		sa, _ := asSequence(a)
		sb, _ := asSequence(b)
		if len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ma, _ := asMap(a)
		mb, _ := asMap(b)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case KindOther:
		return reflect.DeepEqual(a, b)
	default:
		return a == b
	}
}

// Order compares two values that share a natural ordering and returns
// -1, 0 or +1. ok is false when the values cannot be ordered against each
// other, such as a string and a number, or two records.
func Order(a, b any) (c int, ok bool) {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		if ta, tb, ok := timePair(a, b); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	return orderSameKind(ka, a, b)
}

func orderSameKind(k Kind, a, b any) (int, bool) {
	switch k {
	case KindNumber:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return cmp.Compare(na, nb), true
	case KindString:
		return strings.Compare(a.(string), b.(string)), true
	case KindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		default:
			return 1, true
		}
	case KindTime:
		return a.(time.Time).Compare(b.(time.Time)), true
	case KindNull:
		return 0, true
	}
	return 0, false
}

// Compare is a total order over all values, used for sorting. Values of
// different kinds order by kind (null < bool < number < string < time <
// array < object). Values of the same ordered kind use their natural order;
// arrays, records and unknown values compare as equal.
func Compare(a, b any) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	c, _ := orderSameKind(ka, a, b)
	return c
}

// Apply evaluates `left op right`. Ordering operators are false for values
// that cannot be ordered against each other.
func Apply(op CompareOp, left, right any) bool {
	switch op {
	case OpEq:
		return Equal(left, right)
	case OpNe:
		return !Equal(left, right)
	}

	c, ok := Order(left, right)
	if !ok {
		return false
	}
	switch op {
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

// timePair coerces a time and an RFC3339 string into two times.
func timePair(a, b any) (time.Time, time.Time, bool) {
	switch ta := a.(type) {
	case time.Time:
		if s, ok := b.(string); ok {
			if tb, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return ta, tb, true
			}
		}
	case string:
		if tb, ok := b.(time.Time); ok {
			if parsed, err := time.Parse(time.RFC3339Nano, ta); err == nil {
				return parsed, tb, true
			}
		}
	}
	return time.Time{}, time.Time{}, false
}
