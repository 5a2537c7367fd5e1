package vector

import (
	"fmt"

	cm "github.com/gasparian/crypto-recommend-go/common"
)

// Collection is an arena of vectors addressed by integer refs.
// Removal leaves a tombstone until Compact is called, so refs held
// by an index or a cluster never dangle.
type Collection struct {
	ordering *Ordering
	items    []*Vector
	byID     map[string]int
	live     int
}

// NewCollection creates empty collection for vectors of the ordering
func NewCollection(ordering *Ordering) *Collection {
	return &Collection{
		ordering: ordering,
		byID:     make(map[string]int),
	}
}

// Ordering returns coordinate ordering of the stored vectors
func (c *Collection) Ordering() *Ordering {
	return c.ordering
}

// Add stores vector and returns its ref
func (c *Collection) Add(v *Vector) (int, error) {
	if v.Dim() != c.ordering.Len() {
		return -1, fmt.Errorf("%w: collection dimension %d, vector dimension %d",
			cm.ErrDimensionMismatch, c.ordering.Len(), v.Dim())
	}
	if id := v.ID(); len(id) > 0 {
		if _, has := c.byID[id]; has {
			return -1, fmt.Errorf("%w: duplicate vector id %q", cm.ErrInvalidArgument, id)
		}
		c.byID[id] = len(c.items)
	}
	c.items = append(c.items, v)
	c.live++
	return len(c.items) - 1, nil
}

// Get returns vector by ref; removed or unknown refs return nil
func (c *Collection) Get(ref int) *Vector {
	if ref < 0 || ref >= len(c.items) {
		return nil
	}
	return c.items[ref]
}

// Lookup finds ref by vector id
func (c *Collection) Lookup(id string) (int, bool) {
	ref, ok := c.byID[id]
	return ref, ok
}

// Len returns number of live vectors
func (c *Collection) Len() int {
	return c.live
}

// Cap returns number of slots including tombstones
func (c *Collection) Cap() int {
	return len(c.items)
}

// Refs returns refs of live vectors in ascending order
func (c *Collection) Refs() []int {
	refs := make([]int, 0, c.live)
	for ref, v := range c.items {
		if v != nil {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Remove puts a tombstone in place of the vector
func (c *Collection) Remove(ref int) bool {
	v := c.Get(ref)
	if v == nil {
		return false
	}
	if id := v.ID(); len(id) > 0 {
		delete(c.byID, id)
	}
	c.items[ref] = nil
	c.live--
	return true
}

// Compact drops tombstones and returns mapping from old refs to the new ones.
// Any index or partition built over the old refs must be rebuilt.
func (c *Collection) Compact() map[int]int {
	remap := make(map[int]int, c.live)
	items := make([]*Vector, 0, c.live)
	for ref, v := range c.items {
		if v == nil {
			continue
		}
		remap[ref] = len(items)
		if id := v.ID(); len(id) > 0 {
			c.byID[id] = len(items)
		}
		items = append(items, v)
	}
	c.items = items
	return remap
}

// Clone returns collection of deep copied vectors with the same refs
func (c *Collection) Clone() *Collection {
	clone := &Collection{
		ordering: c.ordering,
		items:    make([]*Vector, len(c.items)),
		byID:     make(map[string]int, len(c.byID)),
		live:     c.live,
	}
	for ref, v := range c.items {
		if v != nil {
			clone.items[ref] = v.Clone()
		}
	}
	for id, ref := range c.byID {
		clone.byID[id] = ref
	}
	return clone
}
