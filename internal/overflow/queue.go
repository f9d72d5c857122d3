// Package overflow holds the instances a hybrid packer could not place.
package overflow

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/me/jamsched/pkg/model"
)

type item struct {
	entry model.OverflowEntry
	seq   uint64
}

// Queue keeps overflow entries ordered by ascending earliest start, then by
// descending priority, then by insertion order.
type Queue struct {
	items *treeset.Set
	seq   uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{items: treeset.NewWith(func(a, b interface{}) int {
		return itemComparator(a.(*item), b.(*item))
	})}
}

// itemComparator returns -1 if a is served before b, +1 otherwise. Distinct
// items never compare equal.
func itemComparator(a, b *item) int {
	switch {
	case a.entry.EarliestStart != b.entry.EarliestStart:
		return cmpInt64(a.entry.EarliestStart, b.entry.EarliestStart)
	case a.entry.Priority != b.entry.Priority:
		return cmpInt64(int64(b.entry.Priority), int64(a.entry.Priority))
	default:
		return cmpInt64(int64(a.seq), int64(b.seq))
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Push adds an entry.
func (q *Queue) Push(e model.OverflowEntry) {
	q.items.Add(&item{entry: e, seq: q.seq})
	q.seq++
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return q.items.Size()
}

// Peek returns the head of the queue without removing it.
func (q *Queue) Peek() (model.OverflowEntry, bool) {
	it := q.items.Iterator()
	if !it.First() {
		return model.OverflowEntry{}, false
	}
	return it.Value().(*item).entry, true
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (model.OverflowEntry, bool) {
	it := q.items.Iterator()
	if !it.First() {
		return model.OverflowEntry{}, false
	}
	head := it.Value().(*item)
	q.items.Remove(head)
	return head.entry, true
}

// Iterator returns an Iterator that traverses the queue in service order.
func (q *Queue) Iterator() *Iterator {
	return &Iterator{it: q.items.Iterator()}
}

// Entries returns a snapshot of the queue in service order.
func (q *Queue) Entries() []model.OverflowEntry {
	out := make([]model.OverflowEntry, 0, q.Len())
	for it := q.Iterator(); it.Next(); {
		out = append(out, it.Value())
	}
	return out
}

// Iterator is an iterator over queued entries.
type Iterator struct{ it treeset.Iterator }

// Next moves the iterator forward to the next entry.
func (i *Iterator) Next() bool {
	return i.it.Next()
}

// Value returns the entry at the current position of the iterator.
func (i *Iterator) Value() model.OverflowEntry {
	return i.it.Value().(*item).entry
}
