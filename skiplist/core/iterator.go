package core

import (
	"cmp"
	"fmt"

	"github.com/skiplistlab/skiplist/skiplist"
)

// Iterator walks the base level in ascending key order. The cursor starts
// before the first element; the usual loop is
//
//	it := sl.Iterator()
//	for it.Next() {
//	    _ = it.Key()
//	}
//
// Mutating the list while an iterator is open is not supported; after an
// Insert or Delete the cursor may skip or revisit elements.
type Iterator[K cmp.Ordered, V any] struct {
	current *node[K, V]
}

// Iterator returns a cursor positioned before the first element.
func (sl *List[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{current: sl.head}
}

// Next advances the cursor and reports whether an element is available.
func (it *Iterator[K, V]) Next() bool {
	if it.current == nil {
		return false
	}
	it.current = it.current.next[0]
	return it.current != nil
}

// Key returns the key under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *Iterator[K, V]) Key() K { return it.current.key }

// Value returns the value under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *Iterator[K, V]) Value() V { return it.current.value }

// ValueRef returns a pointer to the value slot under the cursor, so the
// value can be rewritten mid-walk. The key is not reachable through it.
// REQUIRES: the last call to Next returned true.
func (it *Iterator[K, V]) ValueRef() *V { return &it.current.value }

// RangeIterator walks the keys inside a bounded interval in ascending
// order. Bounds are fixed at construction; each end is independently
// inclusive or exclusive.
type RangeIterator[K cmp.Ordered, V any] struct {
	current  *node[K, V]
	upper    K
	incUpper bool
	done     bool
}

// Range returns a cursor over the keys between lower and upper. A lower
// bound above the upper bound is rejected with ErrInvalidRange; equal
// bounds are valid and yield at most one key when both ends are inclusive.
func (sl *List[K, V]) Range(lower, upper K, incLower, incUpper bool) (*RangeIterator[K, V], error) {
	if lower > upper {
		return nil, fmt.Errorf("%w: [%v, %v]", skiplist.ErrInvalidRange, lower, upper)
	}
	start := sl.findLowerBound(lower)
	if !incLower {
		if nxt := start.next[0]; nxt != nil && nxt.key == lower {
			start = nxt
		}
	}
	return &RangeIterator[K, V]{current: start, upper: upper, incUpper: incUpper}, nil
}

// Next advances the cursor and reports whether an element inside the
// bounds is available. Once the upper bound is crossed the cursor stays
// exhausted.
func (it *RangeIterator[K, V]) Next() bool {
	if it.done || it.current == nil {
		return false
	}
	nxt := it.current.next[0]
	if nxt == nil || nxt.key > it.upper || (nxt.key == it.upper && !it.incUpper) {
		it.done = true
		return false
	}
	it.current = nxt
	return true
}

// Key returns the key under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *RangeIterator[K, V]) Key() K { return it.current.key }

// Value returns the value under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *RangeIterator[K, V]) Value() V { return it.current.value }

// ValueRef returns a pointer to the value slot under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *RangeIterator[K, V]) ValueRef() *V { return &it.current.value }
