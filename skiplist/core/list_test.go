package core

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/skiplistlab/skiplist/skiplist"
	"github.com/skiplistlab/skiplist/skiplist/analy"
	"github.com/skiplistlab/skiplist/skiplist/heightcontrol"
)

func TestListInterface(t *testing.T) {
	var _ skiplist.SkipList[int64, float64] = (*List[int64, float64])(nil)
	var _ skiplist.Analyable[int64, float64] = (*List[int64, float64])(nil)
	var _ skiplist.Nodelike[int64, float64] = (*node[int64, float64])(nil)
}

func newTestList(t *testing.T) *List[int64, float64] {
	t.Helper()
	sl, err := New[int64, float64](Config{Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	return sl
}

func TestConfigValidation(t *testing.T) {
	for _, cfg := range []Config{
		{P: -0.1},
		{P: 1.0},
		{P: 2.0},
		{InitialMaxHeight: -1},
		{InitialMaxHeight: 100},
	} {
		if _, err := New[int64, float64](cfg); !errors.Is(err, skiplist.ErrBadConfig) {
			t.Errorf("New(%+v) err = %v, want ErrBadConfig", cfg, err)
		}
	}
	if _, err := NewWithControl[int64, float64](nil); !errors.Is(err, skiplist.ErrBadConfig) {
		t.Errorf("NewWithControl(nil) err = %v, want ErrBadConfig", err)
	}
}

func TestBasicOps(t *testing.T) {
	sl := newTestList(t)

	if sl.Len() != 0 {
		t.Fatalf("empty list Len = %d", sl.Len())
	}
	if sl.Contains(1) {
		t.Fatal("empty list contains 1")
	}
	if _, ok := sl.Get(1); ok {
		t.Fatal("Get on empty list reported a hit")
	}
	if _, ok := sl.Delete(1); ok {
		t.Fatal("Delete on empty list reported a hit")
	}

	if _, existed := sl.Insert(1, 6); existed {
		t.Fatal("first insert reported an existing key")
	}
	sl.Insert(2, 7)
	if sl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sl.Len())
	}
	if v, ok := sl.Get(1); !ok || v != 6 {
		t.Fatalf("Get(1) = %v, %v", v, ok)
	}
	if v, ok := sl.Get(2); !ok || v != 7 {
		t.Fatalf("Get(2) = %v, %v", v, ok)
	}
}

func TestInsertOverwrite(t *testing.T) {
	sl := newTestList(t)
	sl.Insert(5, 1.0)
	prev, existed := sl.Insert(5, 2.0)
	if !existed || prev != 1.0 {
		t.Fatalf("overwrite returned (%v, %v), want (1, true)", prev, existed)
	}
	if sl.Len() != 1 {
		t.Fatalf("Len = %d after overwrite, want 1", sl.Len())
	}
	if v, _ := sl.Get(5); v != 2.0 {
		t.Fatalf("Get(5) = %v after overwrite, want 2", v)
	}
}

func TestDeleteReturnsValue(t *testing.T) {
	sl := newTestList(t)
	for i := int64(0); i < 10; i++ {
		sl.Insert(i, float64(i)*10)
	}
	v, ok := sl.Delete(3)
	if !ok || v != 30 {
		t.Fatalf("Delete(3) = (%v, %v), want (30, true)", v, ok)
	}
	if sl.Contains(3) {
		t.Fatal("key 3 still present after delete")
	}
	if sl.Len() != 9 {
		t.Fatalf("Len = %d, want 9", sl.Len())
	}
	if _, ok := sl.Delete(3); ok {
		t.Fatal("second Delete(3) reported a hit")
	}
}

func TestGetRefMutatesValue(t *testing.T) {
	sl := newTestList(t)
	sl.Insert(1, 6)
	ref, ok := sl.GetRef(1)
	if !ok {
		t.Fatal("GetRef missed an existing key")
	}
	*ref = 99
	if v, _ := sl.Get(1); v != 99 {
		t.Fatalf("Get(1) = %v after mutation through GetRef, want 99", v)
	}
}

func TestFirstLast(t *testing.T) {
	sl := newTestList(t)
	if _, _, ok := sl.First(); ok {
		t.Fatal("First on empty list reported a hit")
	}
	if _, _, ok := sl.Last(); ok {
		t.Fatal("Last on empty list reported a hit")
	}
	for _, k := range []int64{5, 1, 9, 3, 7} {
		sl.Insert(k, float64(k))
	}
	if k, v, _ := sl.First(); k != 1 || v != 1 {
		t.Fatalf("First = (%d, %v), want (1, 1)", k, v)
	}
	if k, v, _ := sl.Last(); k != 9 || v != 9 {
		t.Fatalf("Last = (%d, %v), want (9, 9)", k, v)
	}
}

func TestString(t *testing.T) {
	sl := newTestList(t)
	if got := sl.String(); got != "[]" {
		t.Fatalf("empty String = %q", got)
	}
	sl.Insert(2, 7)
	sl.Insert(1, 6)
	if got := sl.String(); got != "[1: 6, 2: 7]" {
		t.Fatalf("String = %q, want %q", got, "[1: 6, 2: 7]")
	}
}

func TestClear(t *testing.T) {
	sl := newTestList(t)
	for i := int64(0); i < 100; i++ {
		sl.Insert(i, float64(i))
	}
	sl.Clear()
	if sl.Len() != 0 {
		t.Fatalf("Len = %d after Clear", sl.Len())
	}
	if sl.Contains(50) {
		t.Fatal("key survived Clear")
	}
	// The list must be usable again.
	sl.Insert(7, 7)
	if v, ok := sl.Get(7); !ok || v != 7 {
		t.Fatalf("Get(7) after Clear = (%v, %v)", v, ok)
	}
	if err := analy.CheckStruct[int64, float64](sl); err != nil {
		t.Fatal(err)
	}
}

func TestSortedRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 100, 10000} {
		sl := newTestList(t)
		keys := rand.New(rand.NewSource(int64(n))).Perm(n)
		for _, k := range keys {
			sl.Insert(int64(k), float64(k))
		}
		if sl.Len() != n {
			t.Fatalf("n=%d: Len = %d", n, sl.Len())
		}
		it := sl.Iterator()
		got := make([]int64, 0, n)
		for it.Next() {
			got = append(got, it.Key())
		}
		if len(got) != n {
			t.Fatalf("n=%d: iterated %d keys", n, len(got))
		}
		if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }) {
			t.Fatalf("n=%d: iteration out of order", n)
		}
		if err := analy.CheckStruct[int64, float64](sl); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
	}
}

// TestRandomOpsAgainstMap drives the list and a plain map with the same
// random operation stream and requires identical observable state.
func TestRandomOpsAgainstMap(t *testing.T) {
	sl := newTestList(t)
	shadow := make(map[int64]float64)
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 50000; i++ {
		key := int64(rng.Intn(500))
		switch rng.Intn(3) {
		case 0:
			val := rng.Float64()
			prev, existed := sl.Insert(key, val)
			sv, sok := shadow[key]
			if existed != sok || (existed && prev != sv) {
				t.Fatalf("op %d: Insert(%d) = (%v, %v), shadow (%v, %v)", i, key, prev, existed, sv, sok)
			}
			shadow[key] = val
		case 1:
			v, ok := sl.Get(key)
			sv, sok := shadow[key]
			if ok != sok || (ok && v != sv) {
				t.Fatalf("op %d: Get(%d) = (%v, %v), shadow (%v, %v)", i, key, v, ok, sv, sok)
			}
		case 2:
			v, ok := sl.Delete(key)
			sv, sok := shadow[key]
			if ok != sok || (ok && v != sv) {
				t.Fatalf("op %d: Delete(%d) = (%v, %v), shadow (%v, %v)", i, key, v, ok, sv, sok)
			}
			delete(shadow, key)
		}
		if sl.Len() != len(shadow) {
			t.Fatalf("op %d: Len = %d, shadow %d", i, sl.Len(), len(shadow))
		}
	}
	if err := analy.CheckStruct[int64, float64](sl); err != nil {
		t.Fatal(err)
	}
}

func TestHeightShrinksAfterDeletes(t *testing.T) {
	sl := newTestList(t)
	for i := int64(0); i < 10000; i++ {
		sl.Insert(i, 0)
	}
	_, grownHeight := sl.GetMaxStats()
	for i := int64(0); i < 10000; i++ {
		sl.Delete(i)
	}
	_, h := sl.GetMaxStats()
	if h != 1 {
		t.Fatalf("height = %d after draining, want 1 (was %d)", h, grownHeight)
	}
	if sl.Len() != 0 {
		t.Fatalf("Len = %d after draining", sl.Len())
	}
}

func TestLevelPopulationTracksP(t *testing.T) {
	sl, err := New[int64, float64](Config{P: 0.5, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	const n = 50000
	for i := int64(0); i < n; i++ {
		sl.Insert(i, 0)
	}
	counts := analy.CountLevel[int64, float64](sl)
	// Each level should hold about half the nodes of the one below.
	for lvl := 1; lvl < 5; lvl++ {
		ratio := float64(counts[lvl]) / float64(counts[lvl-1])
		if ratio < 0.4 || ratio > 0.6 {
			t.Errorf("level %d/%d ratio = %.3f, want about 0.5", lvl, lvl-1, ratio)
		}
	}
}

func TestWithTwoPowControl(t *testing.T) {
	ctl, err := heightcontrol.NewTwoPow[int64](32, 7)
	if err != nil {
		t.Fatal(err)
	}
	sl, err := NewWithControl[int64, float64](ctl)
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 5000; i++ {
		sl.Insert(i, float64(i))
	}
	if sl.Len() != 5000 {
		t.Fatalf("Len = %d", sl.Len())
	}
	if err := analy.CheckStruct[int64, float64](sl); err != nil {
		t.Fatal(err)
	}
}
