package kv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gasparian/crypto-recommend-go/store"
)

var (
	bucketNotFoundErr = store.ErrBucketNotFound
	tableNotFoundErr  = errors.New("Table not found")
)

type table struct {
	mx      sync.RWMutex
	buckets map[uint64][]int
}

// KVStore keeps buckets in memory, one lock per table,
// so tables can be filled concurrently by separate workers
type KVStore struct {
	tables []*table
}

// NewKVStore creates store for the given number of tables
func NewKVStore(nTables int) *KVStore {
	s := &KVStore{
		tables: make([]*table, nTables),
	}
	for i := range s.tables {
		s.tables[i] = &table{buckets: make(map[uint64][]int)}
	}
	return s
}

// KeysIterator walks over a snapshot of a bucket
type KeysIterator struct {
	refs []int
	pos  int
}

// Next returns ref of the next vector in the bucket
func (it *KeysIterator) Next() (int, bool) {
	if it.pos >= len(it.refs) {
		return -1, false
	}
	ref := it.refs[it.pos]
	it.pos++
	return ref, true
}

func (s *KVStore) getTable(idx int) (*table, error) {
	if idx < 0 || idx >= len(s.tables) {
		return nil, fmt.Errorf("%w: %v", tableNotFoundErr, idx)
	}
	return s.tables[idx], nil
}

// Tables returns number of tables
func (s *KVStore) Tables() int {
	return len(s.tables)
}

// SetHash appends vector ref to the bucket
func (s *KVStore) SetHash(tableIdx int, hash uint64, ref int) error {
	t, err := s.getTable(tableIdx)
	if err != nil {
		return err
	}
	t.mx.Lock()
	defer t.mx.Unlock()
	t.buckets[hash] = append(t.buckets[hash], ref)
	return nil
}

// DeleteHash removes the latest occurrence of ref from the bucket;
// emptied buckets are dropped
func (s *KVStore) DeleteHash(tableIdx int, hash uint64, ref int) error {
	t, err := s.getTable(tableIdx)
	if err != nil {
		return err
	}
	t.mx.Lock()
	defer t.mx.Unlock()
	bucket := t.buckets[hash]
	for i := len(bucket) - 1; i >= 0; i-- {
		if bucket[i] != ref {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(t.buckets, hash)
		} else {
			t.buckets[hash] = bucket
		}
		return nil
	}
	return fmt.Errorf("%w: ref %v in table %v", bucketNotFoundErr, ref, tableIdx)
}

// GetHashIterator returns iterator over the bucket contents
func (s *KVStore) GetHashIterator(tableIdx int, hash uint64) (store.Iterator, error) {
	t, err := s.getTable(tableIdx)
	if err != nil {
		return nil, err
	}
	t.mx.RLock()
	defer t.mx.RUnlock()
	bucket, ok := t.buckets[hash]
	if !ok {
		return nil, bucketNotFoundErr
	}
	refs := make([]int, len(bucket))
	copy(refs, bucket)
	return &KeysIterator{refs: refs}, nil
}

// Stats returns number of buckets and the size of the largest one
func (s *KVStore) Stats(tableIdx int) (int, int) {
	t, err := s.getTable(tableIdx)
	if err != nil {
		return 0, 0
	}
	t.mx.RLock()
	defer t.mx.RUnlock()
	maxBucket := 0
	for _, b := range t.buckets {
		if len(b) > maxBucket {
			maxBucket = len(b)
		}
	}
	return len(t.buckets), maxBucket
}

// Clear drops all buckets
func (s *KVStore) Clear() error {
	for _, t := range s.tables {
		t.mx.Lock()
		t.buckets = make(map[uint64][]int)
		t.mx.Unlock()
	}
	return nil
}
