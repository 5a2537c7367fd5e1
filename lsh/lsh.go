package lsh

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/store"
	"github.com/gasparian/crypto-recommend-go/vector"
	"gonum.org/v1/gonum/blas/blas64"
)

// NewIndex creates empty index over the collection vectors of the given dimension;
// the store must hold exactly config.NumTables tables
func NewIndex(config Config, dims int, vectors *vector.Collection, s store.Store) (*Index, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if s.Tables() != config.NumTables {
		return nil, fmt.Errorf("%w: index has %d tables, store has %d", cm.ErrInvalidArgument, config.NumTables, s.Tables())
	}
	hasher, err := NewHasher(HasherConfig{
		NTables: config.NumTables,
		NPlanes: config.HashWidth,
		Dims:    dims,
		Seed:    config.Seed,
	})
	if err != nil {
		return nil, err
	}
	return &Index{
		config:  config,
		dims:    dims,
		hasher:  hasher,
		vectors: vectors,
		store:   s,
		seq:     make(map[int]int),
	}, nil
}

// Config returns index parameters
func (index *Index) Config() Config {
	return index.config
}

// Len returns number of indexed vectors
func (index *Index) Len() int {
	index.mx.RLock()
	defer index.mx.RUnlock()
	return len(index.seq)
}

// checkRef validates that ref may be inserted and returns its vector
func (index *Index) checkRef(ref int) (*vector.Vector, error) {
	v := index.vectors.Get(ref)
	if v == nil {
		return nil, fmt.Errorf("%w: no vector with ref %d", cm.ErrInvalidArgument, ref)
	}
	if v.Dim() != index.dims {
		return nil, fmt.Errorf("%w: index dimension %d, vector dimension %d", cm.ErrDimensionMismatch, index.dims, v.Dim())
	}
	if _, has := index.seq[ref]; has {
		return nil, fmt.Errorf("%w: ref %d is already indexed", cm.ErrInvalidArgument, ref)
	}
	return v, nil
}

// Insert hashes the vector into one bucket per table.
// On a store error the buckets written so far are rolled back.
func (index *Index) Insert(ref int) error {
	index.mx.Lock()
	defer index.mx.Unlock()

	v, err := index.checkRef(ref)
	if err != nil {
		return err
	}
	hashes := index.hasher.getHashes(v.ObservedDense())
	for table, hash := range hashes {
		if err := index.store.SetHash(table, hash, ref); err != nil {
			for prev := table - 1; prev >= 0; prev-- {
				index.store.DeleteHash(prev, hashes[prev], ref)
			}
			return err
		}
	}
	index.seq[ref] = len(index.seq)
	return nil
}

// Build inserts all refs, filling every table in its own goroutine.
// Bucket contents follow the order of refs. If any table fails,
// the whole batch is removed from every table.
func (index *Index) Build(refs []int) error {
	index.mx.Lock()
	defer index.mx.Unlock()

	dense := make([]blas64.Vector, len(refs))
	inBatch := make(map[int]bool, len(refs))
	for i, ref := range refs {
		v, err := index.checkRef(ref)
		if err != nil {
			return err
		}
		if inBatch[ref] {
			return fmt.Errorf("%w: ref %d repeats in the batch", cm.ErrInvalidArgument, ref)
		}
		inBatch[ref] = true
		dense[i] = v.ObservedDense()
	}

	nTables := index.config.NumTables
	errs := make([]error, nTables)
	written := make([]int, nTables)
	wg := sync.WaitGroup{}
	wg.Add(nTables)
	for table := 0; table < nTables; table++ {
		go func(table int) {
			defer wg.Done()
			for i, ref := range refs {
				hash := index.hasher.getHash(table, dense[i])
				if err := index.store.SetHash(table, hash, ref); err != nil {
					errs[table] = err
					return
				}
				written[table] = i + 1
			}
		}(table)
	}
	wg.Wait()
	for _, err := range errs {
		if err == nil {
			continue
		}
		for table := 0; table < nTables; table++ {
			for i := written[table] - 1; i >= 0; i-- {
				index.store.DeleteHash(table, index.hasher.getHash(table, dense[i]), refs[i])
			}
		}
		return err
	}
	for _, ref := range refs {
		index.seq[ref] = len(index.seq)
	}
	return nil
}

// Reset drops all buckets; the hyperplanes are kept
func (index *Index) Reset() error {
	index.mx.Lock()
	defer index.mx.Unlock()
	index.seq = make(map[int]int)
	return index.store.Clear()
}

type candidate struct {
	ref int
	seq int
	v   *vector.Vector
	sim float64
}

func isSelf(query, v *vector.Vector) bool {
	if query == v {
		return true
	}
	id := query.ID()
	return len(id) > 0 && id == v.ID()
}

// Query returns up to k vectors sharing a bucket with the query in any table,
// ranked by exact cosine similarity; ties keep insertion order.
// The query itself is never returned. Candidates are ranked eagerly when
// Query is called; the returned Neighbors only hands them out once.
func (index *Index) Query(query *vector.Vector, k int) (*Neighbors, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: neighbors number must be positive, got %d", cm.ErrInvalidArgument, k)
	}
	if query.Dim() != index.dims {
		return nil, fmt.Errorf("%w: index dimension %d, query dimension %d", cm.ErrDimensionMismatch, index.dims, query.Dim())
	}

	index.mx.RLock()
	defer index.mx.RUnlock()

	hashes := index.hasher.getHashes(query.ObservedDense())
	seen := make(map[int]bool)
	candidates := make([]candidate, 0)
	for table, hash := range hashes {
		it, err := index.store.GetHashIterator(table, hash)
		if errors.Is(err, store.ErrBucketNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for ref, ok := it.Next(); ok; ref, ok = it.Next() {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			v := index.vectors.Get(ref)
			if v == nil || isSelf(query, v) {
				continue
			}
			candidates = append(candidates, candidate{ref: ref, seq: index.seq[ref], v: v})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].seq < candidates[j].seq
	})
	for i := range candidates {
		sim, err := vector.Cosine(query, candidates[i].v)
		if err != nil {
			return nil, err
		}
		candidates[i].sim = sim
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	neighbors := make([]Neighbor, len(candidates))
	for i, c := range candidates {
		neighbors[i] = Neighbor{Ref: c.ref, Vector: c.v, Similarity: c.sim}
	}
	return &Neighbors{items: neighbors}, nil
}

// Stats returns bucket occupancy for every table
func (index *Index) Stats() []TableStats {
	stats := make([]TableStats, index.config.NumTables)
	for table := range stats {
		buckets, maxBucket := index.store.Stats(table)
		stats[table] = TableStats{Buckets: buckets, MaxBucket: maxBucket}
	}
	return stats
}

// Neighbors is a ranked, single-pass sequence of query results.
// Every Query call builds a new one; a consumed sequence can't be restarted.
type Neighbors struct {
	items []Neighbor
	pos   int
}

// Next returns the next best neighbor
func (n *Neighbors) Next() (Neighbor, bool) {
	if n.pos >= len(n.items) {
		return Neighbor{}, false
	}
	nb := n.items[n.pos]
	n.pos++
	return nb, true
}

// Len returns number of neighbors not consumed yet
func (n *Neighbors) Len() int {
	return len(n.items) - n.pos
}

// Vectors drains the remaining neighbors and returns their vectors
func (n *Neighbors) Vectors() []*vector.Vector {
	vecs := make([]*vector.Vector, 0, n.Len())
	for nb, ok := n.Next(); ok; nb, ok = n.Next() {
		vecs = append(vecs, nb.Vector)
	}
	return vecs
}
