package store

import (
	"errors"
)

// ErrBucketNotFound is returned by GetHashIterator when nothing was hashed into the bucket
var ErrBucketNotFound = errors.New("bucket not found")

// Iterator consists from only one method which returns ref of the next vector
type Iterator interface {
	Next() (int, bool)
}

// Store holds LSH buckets: each (table, signature) pair maps to the refs
// of the vectors hashed into it, in insertion order.
// Vectors themselves live in a vector.Collection, buckets only keep refs
// to not duplicate vectors.
type Store interface {
	Tables() int
	SetHash(table int, hash uint64, ref int) error
	DeleteHash(table int, hash uint64, ref int) error
	GetHashIterator(table int, hash uint64) (Iterator, error)
	Stats(table int) (buckets int, maxBucket int)
	Clear() error
}
