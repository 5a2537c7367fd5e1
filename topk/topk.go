package topk

import (
	"container/heap"

	"github.com/gasparian/crypto-recommend-go/vector"
)

// Entry is a coordinate with its value
type Entry struct {
	Index int
	Value float64
}

// Named is an entry resolved to the currency name
type Named struct {
	Entry
	Name string
}

// minHeap keeps the smallest entry on top; among equal values the
// earlier coordinate is the smaller one, so later coordinates win ties
type minHeap []Entry

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].Value == h[j].Value {
		return h[i].Index < h[j].Index
	}
	return h[i].Value < h[j].Value
}
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Selector keeps the n largest offered entries
type Selector struct {
	n int
	h minHeap
}

// NewSelector creates selector of capacity n; n <= 0 makes a selector
// which accepts nothing
func NewSelector(n int) *Selector {
	if n < 0 {
		n = 0
	}
	return &Selector{n: n, h: make(minHeap, 0, n)}
}

// Offer inserts entry if there is room, otherwise replaces the current
// minimum when value is not less than it. Returns true if entry was kept.
func (s *Selector) Offer(index int, value float64) bool {
	if s.n == 0 {
		return false
	}
	if len(s.h) < s.n {
		heap.Push(&s.h, Entry{Index: index, Value: value})
		return true
	}
	if value < s.h[0].Value {
		return false
	}
	s.h[0] = Entry{Index: index, Value: value}
	heap.Fix(&s.h, 0)
	return true
}

// Len returns number of kept entries
func (s *Selector) Len() int {
	return len(s.h)
}

// Drain empties the selector and returns entries from the largest to the smallest
func (s *Selector) Drain() []Entry {
	res := make([]Entry, len(s.h))
	for i := len(res) - 1; i >= 0; i-- {
		res[i] = heap.Pop(&s.h).(Entry)
	}
	return res
}

// Select returns up to n largest values, in descending order, among the
// coordinates accepted by include (nil accepts all)
func Select(values []float64, n int, include func(i int) bool) []Entry {
	if n <= 0 || len(values) == 0 {
		return []Entry{}
	}
	s := NewSelector(n)
	for i, val := range values {
		if include != nil && !include(i) {
			continue
		}
		s.Offer(i, val)
	}
	return s.Drain()
}

// Recommend returns up to n currencies with the highest imputed scores,
// skipping the ones the owner already had an opinion about
func Recommend(v *vector.Vector, n int) []Named {
	dims := v.Dim()
	values := make([]float64, dims)
	for i := range values {
		values[i], _ = v.At(i)
	}
	entries := Select(values, n, func(i int) bool {
		return !v.Known(i) && v.Imputed(i)
	})
	res := make([]Named, 0, len(entries))
	for _, e := range entries {
		name, err := v.Ordering().Name(e.Index)
		if err != nil {
			continue
		}
		res = append(res, Named{Entry: e, Name: name})
	}
	return res
}
