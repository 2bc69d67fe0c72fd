package core

import (
	"errors"
	"testing"

	"github.com/skiplistlab/skiplist/skiplist"
)

func collectRange(t *testing.T, sl *List[int64, float64], lower, upper int64, incLower, incUpper bool) []int64 {
	t.Helper()
	it, err := sl.Range(lower, upper, incLower, incUpper)
	if err != nil {
		t.Fatal(err)
	}
	var got []int64
	for it.Next() {
		got = append(got, it.Key())
	}
	return got
}

func TestIteratorEmpty(t *testing.T) {
	sl := newTestList(t)
	it := sl.Iterator()
	if it.Next() {
		t.Fatal("Next on empty list returned true")
	}
	if it.Next() {
		t.Fatal("Next stayed true after exhaustion")
	}
}

func TestIteratorOrder(t *testing.T) {
	sl := newTestList(t)
	for _, k := range []int64{9, 1, 5, 3, 7} {
		sl.Insert(k, float64(k)*10)
	}
	it := sl.Iterator()
	want := []int64{1, 3, 5, 7, 9}
	for i, k := range want {
		if !it.Next() {
			t.Fatalf("Next = false at element %d", i)
		}
		if it.Key() != k || it.Value() != float64(k)*10 {
			t.Fatalf("element %d = (%d, %v), want (%d, %v)", i, it.Key(), it.Value(), k, float64(k)*10)
		}
	}
	if it.Next() {
		t.Fatal("Next = true past the last element")
	}
}

func TestIteratorValueRef(t *testing.T) {
	sl := newTestList(t)
	for i := int64(0); i < 5; i++ {
		sl.Insert(i, 0)
	}
	it := sl.Iterator()
	for it.Next() {
		*it.ValueRef() = float64(it.Key()) + 1
	}
	for i := int64(0); i < 5; i++ {
		if v, _ := sl.Get(i); v != float64(i)+1 {
			t.Fatalf("Get(%d) = %v after ValueRef rewrite, want %v", i, v, float64(i)+1)
		}
	}
}

func TestIteratorRestart(t *testing.T) {
	sl := newTestList(t)
	sl.Insert(1, 1)
	sl.Insert(2, 2)
	for round := 0; round < 2; round++ {
		it := sl.Iterator()
		n := 0
		for it.Next() {
			n++
		}
		if n != 2 {
			t.Fatalf("round %d: iterated %d elements", round, n)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	sl := newTestList(t)
	for _, k := range []int64{1, 3, 5, 7, 9} {
		sl.Insert(k, float64(k))
	}

	cases := []struct {
		lower, upper       int64
		incLower, incUpper bool
		want               []int64
	}{
		{3, 7, true, true, []int64{3, 5, 7}},
		{3, 7, false, true, []int64{5, 7}},
		{3, 7, true, false, []int64{3, 5}},
		{3, 7, false, false, []int64{5}},
		{0, 100, true, true, []int64{1, 3, 5, 7, 9}},
		{2, 2, true, true, nil},
		{3, 3, true, true, []int64{3}},
		{3, 3, false, true, nil},
		{10, 20, true, true, nil},
	}
	for _, c := range cases {
		got := collectRange(t, sl, c.lower, c.upper, c.incLower, c.incUpper)
		if len(got) != len(c.want) {
			t.Errorf("range %d..%d (%v,%v) = %v, want %v", c.lower, c.upper, c.incLower, c.incUpper, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("range %d..%d (%v,%v) = %v, want %v", c.lower, c.upper, c.incLower, c.incUpper, got, c.want)
				break
			}
		}
	}
}

func TestRangeInvalid(t *testing.T) {
	sl := newTestList(t)
	if _, err := sl.Range(7, 3, true, true); !errors.Is(err, skiplist.ErrInvalidRange) {
		t.Fatalf("Range(7, 3) err = %v, want ErrInvalidRange", err)
	}
}

func TestRangeValueRef(t *testing.T) {
	sl := newTestList(t)
	for _, k := range []int64{1, 2, 3} {
		sl.Insert(k, 0)
	}
	it, err := sl.Range(2, 3, true, true)
	if err != nil {
		t.Fatal(err)
	}
	for it.Next() {
		*it.ValueRef() = 42
	}
	if v, _ := sl.Get(1); v != 0 {
		t.Fatalf("key outside range mutated: %v", v)
	}
	for _, k := range []int64{2, 3} {
		if v, _ := sl.Get(k); v != 42 {
			t.Fatalf("Get(%d) = %v, want 42", k, v)
		}
	}
}
