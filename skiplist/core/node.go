package core

import (
	"cmp"

	"github.com/skiplistlab/skiplist/skiplist"
)

// node carries one key/value pair and one forward link per level it
// participates in. The height is fixed at creation; only the links and the
// value ever change afterwards.
type node[K cmp.Ordered, V any] struct {
	key   K
	value V
	next  []*node[K, V]
}

func newNode[K cmp.Ordered, V any](key K, value V, height int) *node[K, V] {
	return &node[K, V]{
		key:   key,
		value: value,
		next:  make([]*node[K, V], height),
	}
}

func (nd *node[K, V]) height() int { return len(nd.next) }

// Nodelike implementation, used by the analy package.

func (nd *node[K, V]) GetKey() K { return nd.key }

func (nd *node[K, V]) GetValue() V { return nd.value }

func (nd *node[K, V]) GetLevel() int32 { return int32(len(nd.next) - 1) }

func (nd *node[K, V]) GetNextAt(level int32) skiplist.Nodelike[K, V] {
	if level < 0 || level >= int32(len(nd.next)) || nd.next[level] == nil {
		return nil
	}
	return nd.next[level]
}
