// Package analy inspects skip-list structure through the Nodelike view:
// invariant checking, per-level population counts, search-cost measurement
// and a textual dump of the tower layout. It works against any engine that
// implements skiplist.Analyable, so the pointer and arena variants are
// checked by the same code.
package analy

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/skiplistlab/skiplist/skiplist"
)

// ErrCorrupt reports a structural invariant violation.
var ErrCorrupt = errors.New("analy: skip list structure corrupt")

// CheckStruct verifies the structural invariants: the base level is
// strictly increasing, every upper-level link lands on a node that also
// appears on all levels below, and the element count matches Len.
func CheckStruct[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) error {
	head := sl.GetHead()
	maxLevel := head.GetLevel()

	// last[i] is the last node seen that reaches level i; walking the base
	// level, each tower must continue the chain recorded at its height.
	last := make([]skiplist.Nodelike[K, V], maxLevel+1)
	for i := range last {
		last[i] = head
	}

	count := 0
	var prevKey K
	for nd := head.GetNextAt(0); nd != nil; nd = nd.GetNextAt(0) {
		if count > 0 && nd.GetKey() <= prevKey {
			return fmt.Errorf("%w: key %v not above predecessor %v", ErrCorrupt, nd.GetKey(), prevKey)
		}
		lvl := nd.GetLevel()
		if lvl < 0 || lvl > maxLevel {
			return fmt.Errorf("%w: node %v has level %d outside [0, %d]", ErrCorrupt, nd.GetKey(), lvl, maxLevel)
		}
		for i := int32(0); i <= lvl; i++ {
			expect := last[i].GetNextAt(i)
			if expect == nil || expect.GetKey() != nd.GetKey() {
				return fmt.Errorf("%w: level %d chain skips node %v", ErrCorrupt, i, nd.GetKey())
			}
			last[i] = nd
		}
		prevKey = nd.GetKey()
		count++
	}

	// Every chain must end where the base level ends.
	for i := int32(1); i <= maxLevel; i++ {
		if last[i].GetNextAt(i) != nil {
			return fmt.Errorf("%w: level %d chain extends past the last element", ErrCorrupt, i)
		}
	}

	if n, _ := sl.GetMaxStats(); n != count {
		return fmt.Errorf("%w: reported %d elements, found %d on the base level", ErrCorrupt, n, count)
	}
	return nil
}

// CountLevel returns how many nodes reach each level, base level first.
// Summed, the counts give the total number of forward links.
func CountLevel[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) []int {
	head := sl.GetHead()
	counts := make([]int, head.GetLevel()+1)
	for nd := head.GetNextAt(0); nd != nil; nd = nd.GetNextAt(0) {
		for i := int32(0); i <= nd.GetLevel(); i++ {
			counts[i]++
		}
	}
	return counts
}

// FindStep runs the standard top-down search for key and returns the total
// number of node visits plus the visits broken down per level. The key
// does not have to be present.
func FindStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], key K) (int, []int) {
	head := sl.GetHead()
	_, levels := sl.GetMaxStats()
	perLevel := make([]int, levels)
	steps := 0
	cur := head
	for h := int32(levels - 1); h >= 0; h-- {
		for {
			nxt := cur.GetNextAt(h)
			if nxt == nil || nxt.GetKey() >= key {
				break
			}
			cur = nxt
			steps++
			perLevel[h]++
		}
		steps++ // the probe that terminated this level
		perLevel[h]++
	}
	return steps, perLevel
}

// AnalyzeStep returns the access-probability-weighted mean search cost over
// dist, a key-to-probability map. Keys absent from the list still cost a
// full descent and are counted.
func AnalyzeStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], dist map[K]float64) float64 {
	total := 0.0
	weight := 0.0
	for key, p := range dist {
		steps, _ := FindStep(sl, key)
		total += float64(steps) * p
		weight += p
	}
	if weight == 0 {
		return 0
	}
	return total / weight
}

// PrintSkipList writes the tower layout to w, one row per level from the
// top down. Lists over maxNodes elements are refused to keep the dump
// readable.
func PrintSkipList[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], maxNodes int) {
	n, levels := sl.GetMaxStats()
	if n > maxNodes {
		fmt.Fprintf(w, "skip list too large to print: %d elements (limit %d)\n", n, maxNodes)
		return
	}
	head := sl.GetHead()
	for h := int32(levels - 1); h >= 0; h-- {
		fmt.Fprintf(w, "L%-2d", h)
		for nd := head.GetNextAt(0); nd != nil; nd = nd.GetNextAt(0) {
			if nd.GetLevel() >= h {
				fmt.Fprintf(w, " %6v", nd.GetKey())
			} else {
				fmt.Fprint(w, " ------")
			}
		}
		fmt.Fprintln(w)
	}
}

// LevelReport renders a table of the per-level population against the
// p^level share an ideal geometric tower assignment would give.
func LevelReport[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], p float64) {
	counts := CountLevel(sl)
	n, _ := sl.GetMaxStats()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes", "Share", "Expected"})
	for i, c := range counts {
		share := 0.0
		if n > 0 {
			share = float64(c) / float64(n)
		}
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(c),
			fmt.Sprintf("%.4f", share),
			fmt.Sprintf("%.4f", math.Pow(p, float64(i))),
		})
	}
	table.Render()
}
