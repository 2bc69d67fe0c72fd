// Package core implements the sequential skip-list engine: a pointer-linked
// ordered map with expected O(log n) search, insertion and deletion, and
// ordered iteration over the base level.
//
// The engine is single-threaded. All operations run to completion assuming
// exclusive access; callers sharing a List across goroutines must wrap it in
// their own lock.
package core

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/skiplistlab/skiplist/skiplist"
	"github.com/skiplistlab/skiplist/skiplist/heightcontrol"
)

const (
	// DefaultP is the promotion probability used when Config.P is zero.
	DefaultP = 0.5
	// DefaultMaxHeight caps the height any default controller hands out.
	DefaultMaxHeight = 32
)

// Config drives New. Zero values fall back to the documented defaults.
type Config struct {
	// P is the promotion probability, strictly inside (0,1). Default 0.5.
	P float64
	// InitialMaxHeight is the level allowance the list starts with; it is
	// raised automatically as the element count grows. Default 1.
	InitialMaxHeight int
	// Seed feeds the height generator so runs are reproducible. When zero,
	// the current time is used.
	Seed int64
}

// List is the sequential engine. The head sentinel is allocated at the
// controller's maximum height and precedes every real element on every
// level; searches always start there.
type List[K cmp.Ordered, V any] struct {
	head   *node[K, V]
	ctl    heightcontrol.Control[K]
	height int // number of levels currently in use
	length int

	// levelCap is the allowance handed to the controller; it grows by one
	// each time length crosses growAt, which advances by a 1/p factor.
	levelCap int
	growAt   int
	growth   float64
}

// New builds a List with a seeded Geometric height policy.
func New[K cmp.Ordered, V any](cfg Config) (*List[K, V], error) {
	p := cfg.P
	if p == 0 {
		p = DefaultP
	}
	initial := cfg.InitialMaxHeight
	if initial == 0 {
		initial = 1
	}
	if initial < 1 || initial > DefaultMaxHeight {
		return nil, fmt.Errorf("%w: initial max height %d", skiplist.ErrBadConfig, initial)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctl, err := heightcontrol.NewGeometric[K](p, DefaultMaxHeight, seed)
	if err != nil {
		return nil, err
	}
	return newList[K, V](ctl, initial, 1/p), nil
}

// NewWithControl builds a List around a caller-supplied height policy.
func NewWithControl[K cmp.Ordered, V any](ctl heightcontrol.Control[K]) (*List[K, V], error) {
	if ctl == nil {
		return nil, fmt.Errorf("%w: nil height control", skiplist.ErrBadConfig)
	}
	if ctl.MaxHeight() < 1 {
		return nil, fmt.Errorf("%w: max height %d", skiplist.ErrBadConfig, ctl.MaxHeight())
	}
	return newList[K, V](ctl, 1, 2), nil
}

func newList[K cmp.Ordered, V any](ctl heightcontrol.Control[K], initial int, growth float64) *List[K, V] {
	if initial > ctl.MaxHeight() {
		initial = ctl.MaxHeight()
	}
	var zeroK K
	var zeroV V
	sl := &List[K, V]{
		head:     newNode(zeroK, zeroV, ctl.MaxHeight()),
		ctl:      ctl,
		height:   1,
		levelCap: initial,
		growAt:   2,
		growth:   growth,
	}
	// Advance the first growth threshold past the configured allowance.
	for i := 1; i < initial; i++ {
		sl.advanceGrowAt()
	}
	return sl
}

func (sl *List[K, V]) advanceGrowAt() {
	next := int(float64(sl.growAt) * sl.growth)
	if next <= sl.growAt {
		next = sl.growAt + 1
	}
	sl.growAt = next
}

// maxAllowed is the height bound handed to the controller for the next
// insertion: the grown allowance plus slack, clamped to the hard cap.
func (sl *List[K, V]) maxAllowed() int {
	allowed := sl.levelCap + 2
	if allowed > sl.ctl.MaxHeight() {
		allowed = sl.ctl.MaxHeight()
	}
	return allowed
}

// findLowerBound returns the last node whose key is below key, head
// sentinel included. Its level-0 successor is the key's position.
func (sl *List[K, V]) findLowerBound(key K) *node[K, V] {
	cur := sl.head
	for h := sl.height - 1; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key < key {
			cur = cur.next[h]
		}
	}
	return cur
}

// findLowerBoundWithUpdates additionally records, per level, the last node
// visited before dropping down. Levels above the current height map to the
// head so splices that raise the height work unchanged.
func (sl *List[K, V]) findLowerBoundWithUpdates(key K) (*node[K, V], []*node[K, V]) {
	updates := make([]*node[K, V], sl.ctl.MaxHeight())
	for i := sl.height; i < len(updates); i++ {
		updates[i] = sl.head
	}
	cur := sl.head
	for h := sl.height - 1; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key < key {
			cur = cur.next[h]
		}
		updates[h] = cur
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

// GetRef returns a pointer to the value slot so callers can update the
// value in place. The pointer is invalidated by a Delete of the key or by
// Clear; keys are never mutable through it.
func (sl *List[K, V]) GetRef(key K) (*V, bool) {
	lb := sl.findLowerBound(key)
	if nxt := lb.next[0]; nxt != nil && nxt.key == key {
		return &nxt.value, true
	}
	return nil, false
}

// Contains reports whether key is present.
func (sl *List[K, V]) Contains(key K) bool {
	_, ok := sl.GetRef(key)
	return ok
}

// Insert stores value under key. An existing key is a pure value overwrite:
// the node keeps its height and linkage and the previous value is returned
// with true. A new key is spliced in at a height drawn from the policy.
func (sl *List[K, V]) Insert(key K, value V) (V, bool) {
	lb, updates := sl.findLowerBoundWithUpdates(key)
	if nxt := lb.next[0]; nxt != nil && nxt.key == key {
		prev := nxt.value
		nxt.value = value
		return prev, true
	}

	height := sl.ctl.NextHeight(key, sl.maxAllowed())
	if height > sl.height {
		sl.height = height
	}

	nd := newNode(key, value, height)
	for h := 0; h < height; h++ {
		nd.next[h] = updates[h].next[h]
		updates[h].next[h] = nd
	}

	sl.length++
	if sl.length >= sl.growAt && sl.levelCap < sl.ctl.MaxHeight() {
		sl.levelCap++
		sl.advanceGrowAt()
	}
	var zero V
	return zero, false
}

// Delete unlinks key from every level it participates in, top level first,
// and returns its previous value. Absent keys are a no-op reported by the
// false return.
func (sl *List[K, V]) Delete(key K) (V, bool) {
	lb, updates := sl.findLowerBoundWithUpdates(key)
	target := lb.next[0]
	if target == nil || target.key != key {
		var zero V
		return zero, false
	}

	for h := target.height() - 1; h >= 0; h-- {
		if updates[h].next[h] == target {
			updates[h].next[h] = target.next[h]
		}
	}

	sl.length--
	// Retire empty top levels so searches skip them.
	for sl.height > 1 && sl.head.next[sl.height-1] == nil {
		sl.height--
	}
	return target.value, true
}

// Len returns the element count.
func (sl *List[K, V]) Len() int { return sl.length }

// Clear drops every element. The growth state resets with the contents.
func (sl *List[K, V]) Clear() {
	for i := range sl.head.next {
		sl.head.next[i] = nil
	}
	sl.height = 1
	sl.length = 0
	sl.levelCap = 1
	sl.growAt = 2
}

// First returns the smallest key and its value.
func (sl *List[K, V]) First() (K, V, bool) {
	if nd := sl.head.next[0]; nd != nil {
		return nd.key, nd.value, true
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

// Last returns the largest key and its value, walking the top levels so the
// cost stays logarithmic.
func (sl *List[K, V]) Last() (K, V, bool) {
	cur := sl.head
	for h := sl.height - 1; h >= 0; h-- {
		for cur.next[h] != nil {
			cur = cur.next[h]
		}
	}
	if cur == sl.head {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	return cur.key, cur.value, true
}

// String renders the base level as "[k: v, k: v]".
func (sl *List[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for nd := sl.head.next[0]; nd != nil; nd = nd.next[0] {
		if nd != sl.head.next[0] {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v: %v", nd.key, nd.value)
	}
	b.WriteByte(']')
	return b.String()
}

// GetHead exposes the head sentinel for the analy package.
func (sl *List[K, V]) GetHead() skiplist.Nodelike[K, V] { return sl.head }

// GetMaxStats returns the element count and the number of active levels.
func (sl *List[K, V]) GetMaxStats() (int, int) { return sl.length, sl.height }
