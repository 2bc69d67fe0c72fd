// Package skiplist defines the shared contract for the ordered-map
// implementations in this repository. Concrete backings live in the
// subpackages (core is the pointer-linked engine, arena the index-linked
// one); the analy package and the benchmark commands only talk to these
// interfaces.
package skiplist

import "cmp"

// SkipList is an ordered map keyed by a totally ordered type. At most one
// element per key exists at any time.
type SkipList[K cmp.Ordered, V any] interface {
	Contains(key K) bool
	Get(key K) (V, bool)
	// Insert stores value under key. If the key already existed, its value
	// is replaced in place and the previous value is returned with true.
	Insert(key K, value V) (V, bool)
	// Delete removes key and returns its previous value with true, or the
	// zero value with false if the key was absent.
	Delete(key K) (V, bool)
	Len() int
	GetHead() Nodelike[K, V]
}

// Analyable provides the extra statistics the analy package needs.
type Analyable[K cmp.Ordered, V any] interface {
	SkipList[K, V]
	// GetMaxStats returns the element count and the number of active levels.
	GetMaxStats() (maxNodes int, maxLevel int)
}

// Nodelike is a read-only view of one node, head sentinel included. Levels
// are numbered from 0; GetLevel returns the highest level the node links at.
type Nodelike[K cmp.Ordered, V any] interface {
	GetKey() K
	GetValue() V
	GetLevel() int32
	GetNextAt(level int32) Nodelike[K, V]
}
