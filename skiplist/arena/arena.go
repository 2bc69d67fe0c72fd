// Package arena implements the skip-list engine over a flat slot arena.
// Nodes live in one growable slice and link by index instead of pointer,
// which keeps them adjacent in memory and lets deleted slots be recycled.
// Free slots are tracked in a roaring bitmap so the lowest reusable index
// is found without scanning.
//
// The public surface mirrors the pointer engine in core; tests run both
// against the same workloads.
package arena

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/skiplistlab/skiplist/skiplist"
	"github.com/skiplistlab/skiplist/skiplist/heightcontrol"
)

// nilRef marks the absence of a successor.
const nilRef = ^uint32(0)

type slot[K cmp.Ordered, V any] struct {
	key   K
	value V
	next  []uint32
	live  bool
}

func (s *slot[K, V]) height() int { return len(s.next) }

// List is the arena-backed engine. Slot 0 holds the head sentinel at the
// controller's maximum height.
type List[K cmp.Ordered, V any] struct {
	slots  []slot[K, V]
	free   *roaring.Bitmap
	ctl    heightcontrol.Control[K]
	height int
	length int
}

// New builds a List with a seeded Geometric height policy.
func New[K cmp.Ordered, V any](p float64, seed int64) (*List[K, V], error) {
	ctl, err := heightcontrol.NewGeometric[K](p, 32, seed)
	if err != nil {
		return nil, err
	}
	return NewWithControl[K, V](ctl)
}

// NewWithControl builds a List around a caller-supplied height policy.
func NewWithControl[K cmp.Ordered, V any](ctl heightcontrol.Control[K]) (*List[K, V], error) {
	if ctl == nil {
		return nil, fmt.Errorf("%w: nil height control", skiplist.ErrBadConfig)
	}
	if ctl.MaxHeight() < 1 {
		return nil, fmt.Errorf("%w: max height %d", skiplist.ErrBadConfig, ctl.MaxHeight())
	}
	head := slot[K, V]{next: make([]uint32, ctl.MaxHeight()), live: true}
	for i := range head.next {
		head.next[i] = nilRef
	}
	return &List[K, V]{
		slots:  []slot[K, V]{head},
		free:   roaring.New(),
		ctl:    ctl,
		height: 1,
	}, nil
}

// alloc hands out a slot for a node of the given height, recycling the
// lowest freed index first. A recycled slot keeps its next slice when the
// capacity still fits.
func (sl *List[K, V]) alloc(key K, value V, height int) uint32 {
	if !sl.free.IsEmpty() {
		idx := sl.free.Minimum()
		sl.free.Remove(idx)
		s := &sl.slots[idx]
		s.key = key
		s.value = value
		s.live = true
		if cap(s.next) >= height {
			s.next = s.next[:height]
		} else {
			s.next = make([]uint32, height)
		}
		return idx
	}
	sl.slots = append(sl.slots, slot[K, V]{
		key:   key,
		value: value,
		next:  make([]uint32, height),
		live:  true,
	})
	return uint32(len(sl.slots) - 1)
}

func (sl *List[K, V]) findLowerBound(key K) uint32 {
	cur := uint32(0)
	for h := sl.height - 1; h >= 0; h-- {
		for {
			nxt := sl.slots[cur].next[h]
			if nxt == nilRef || sl.slots[nxt].key >= key {
				break
			}
			cur = nxt
		}
	}
	return cur
}

func (sl *List[K, V]) findLowerBoundWithUpdates(key K) (uint32, []uint32) {
	updates := make([]uint32, sl.ctl.MaxHeight())
	cur := uint32(0)
	for h := sl.height - 1; h >= 0; h-- {
		for {
			nxt := sl.slots[cur].next[h]
			if nxt == nilRef || sl.slots[nxt].key >= key {
				break
			}
			cur = nxt
		}
		updates[h] = cur
	}
	// Levels above the current height splice off the head.
	for i := sl.height; i < len(updates); i++ {
		updates[i] = 0
	}
	return cur, updates
}

// Get returns the value stored under key.
func (sl *List[K, V]) Get(key K) (V, bool) {
	if ref, ok := sl.GetRef(key); ok {
		return *ref, true
	}
	var zero V
	return zero, false
}

// GetRef returns a pointer into the arena slot holding the value. The
// pointer is invalidated by any Insert, since appending to the slot slice
// may move it; take the value out before mutating the list.
func (sl *List[K, V]) GetRef(key K) (*V, bool) {
	lb := sl.findLowerBound(key)
	if nxt := sl.slots[lb].next[0]; nxt != nilRef && sl.slots[nxt].key == key {
		return &sl.slots[nxt].value, true
	}
	return nil, false
}

// Contains reports whether key is present.
func (sl *List[K, V]) Contains(key K) bool {
	_, ok := sl.GetRef(key)
	return ok
}

// Insert stores value under key, overwriting in place when the key exists
// and returning the previous value with true.
func (sl *List[K, V]) Insert(key K, value V) (V, bool) {
	_, updates := sl.findLowerBoundWithUpdates(key)
	if nxt := sl.slots[updates[0]].next[0]; nxt != nilRef && sl.slots[nxt].key == key {
		prev := sl.slots[nxt].value
		sl.slots[nxt].value = value
		return prev, true
	}

	height := sl.ctl.NextHeight(key, sl.ctl.MaxHeight())
	if height > sl.height {
		sl.height = height
	}

	idx := sl.alloc(key, value, height)
	for h := 0; h < height; h++ {
		sl.slots[idx].next[h] = sl.slots[updates[h]].next[h]
		sl.slots[updates[h]].next[h] = idx
	}

	sl.length++
	var zero V
	return zero, false
}

// Delete unlinks key, releases its slot for reuse and returns the previous
// value.
func (sl *List[K, V]) Delete(key K) (V, bool) {
	lb, updates := sl.findLowerBoundWithUpdates(key)
	target := sl.slots[lb].next[0]
	if target == nilRef || sl.slots[target].key != key {
		var zero V
		return zero, false
	}

	ts := &sl.slots[target]
	for h := ts.height() - 1; h >= 0; h-- {
		if sl.slots[updates[h]].next[h] == target {
			sl.slots[updates[h]].next[h] = ts.next[h]
		}
	}

	prev := ts.value
	var zeroK K
	var zeroV V
	ts.key = zeroK
	ts.value = zeroV
	ts.live = false
	sl.free.Add(target)

	sl.length--
	for sl.height > 1 && sl.slots[0].next[sl.height-1] == nilRef {
		sl.height--
	}
	return prev, true
}

// Len returns the element count.
func (sl *List[K, V]) Len() int { return sl.length }

// Clear drops every element and releases all slots except the head.
func (sl *List[K, V]) Clear() {
	sl.slots = sl.slots[:1]
	for i := range sl.slots[0].next {
		sl.slots[0].next[i] = nilRef
	}
	sl.free.Clear()
	sl.height = 1
	sl.length = 0
}

// First returns the smallest key and its value.
func (sl *List[K, V]) First() (K, V, bool) {
	if nxt := sl.slots[0].next[0]; nxt != nilRef {
		return sl.slots[nxt].key, sl.slots[nxt].value, true
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

// Last returns the largest key and its value.
func (sl *List[K, V]) Last() (K, V, bool) {
	cur := uint32(0)
	for h := sl.height - 1; h >= 0; h-- {
		for sl.slots[cur].next[h] != nilRef {
			cur = sl.slots[cur].next[h]
		}
	}
	if cur == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	return sl.slots[cur].key, sl.slots[cur].value, true
}

// SlotCount returns the arena size including the head sentinel, counting
// freed slots awaiting reuse.
func (sl *List[K, V]) SlotCount() int { return len(sl.slots) }

// FreeSlots returns how many slots are parked for reuse.
func (sl *List[K, V]) FreeSlots() int { return int(sl.free.GetCardinality()) }

// String renders the base level as "[k: v, k: v]".
func (sl *List[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for idx := sl.slots[0].next[0]; idx != nilRef; idx = sl.slots[idx].next[0] {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v: %v", sl.slots[idx].key, sl.slots[idx].value)
	}
	b.WriteByte(']')
	return b.String()
}

// GetHead exposes the head sentinel for the analy package.
func (sl *List[K, V]) GetHead() skiplist.Nodelike[K, V] {
	return handle[K, V]{sl: sl, idx: 0}
}

// GetMaxStats returns the element count and the number of active levels.
func (sl *List[K, V]) GetMaxStats() (int, int) { return sl.length, sl.height }

// handle adapts an arena index to the Nodelike view.
type handle[K cmp.Ordered, V any] struct {
	sl  *List[K, V]
	idx uint32
}

func (h handle[K, V]) GetKey() K { return h.sl.slots[h.idx].key }

func (h handle[K, V]) GetValue() V { return h.sl.slots[h.idx].value }

func (h handle[K, V]) GetLevel() int32 {
	return int32(len(h.sl.slots[h.idx].next) - 1)
}

func (h handle[K, V]) GetNextAt(level int32) skiplist.Nodelike[K, V] {
	s := &h.sl.slots[h.idx]
	if level < 0 || int(level) >= len(s.next) || s.next[level] == nilRef {
		return nil
	}
	return handle[K, V]{sl: h.sl, idx: s.next[level]}
}

// Iterator walks the base level in ascending key order.
type Iterator[K cmp.Ordered, V any] struct {
	sl  *List[K, V]
	cur uint32
}

// Iterator returns a cursor positioned before the first element.
func (sl *List[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{sl: sl}
}

// Next advances the cursor and reports whether an element is available.
func (it *Iterator[K, V]) Next() bool {
	nxt := it.sl.slots[it.cur].next[0]
	if nxt == nilRef {
		return false
	}
	it.cur = nxt
	return true
}

// Key returns the key under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *Iterator[K, V]) Key() K { return it.sl.slots[it.cur].key }

// Value returns the value under the cursor.
// REQUIRES: the last call to Next returned true.
func (it *Iterator[K, V]) Value() V { return it.sl.slots[it.cur].value }
