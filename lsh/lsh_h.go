package lsh

import (
	"fmt"
	"sync"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/store"
	"github.com/gasparian/crypto-recommend-go/vector"
)

// maxHashWidth is bounded by the uint64 used to hold a signature
const maxHashWidth = 64

// Config holds all needed constants for creating the Index instance
type Config struct {
	NumTables         int   `yaml:"num_tables"`          // L: number of independent hash tables
	HashWidth         int   `yaml:"hash_width"`          // k: hyperplanes (bits) per table signature
	NeighborsPerQuery int   `yaml:"neighbors_per_query"` // K: neighbors used for imputation
	Seed              int64 `yaml:"seed"`                // hyperplanes seed
}

// DefaultConfig returns config used when nothing is specified
func DefaultConfig() Config {
	return Config{
		NumTables:         5,
		HashWidth:         4,
		NeighborsPerQuery: 20,
		Seed:              1,
	}
}

// Validate checks config bounds
func (c Config) Validate() error {
	if c.NumTables < 1 {
		return fmt.Errorf("%w: num_tables must be positive, got %d", cm.ErrInvalidArgument, c.NumTables)
	}
	if c.HashWidth < 1 || c.HashWidth > maxHashWidth {
		return fmt.Errorf("%w: hash_width must be in [1, %d], got %d", cm.ErrInvalidArgument, maxHashWidth, c.HashWidth)
	}
	if c.NeighborsPerQuery < 1 {
		return fmt.Errorf("%w: neighbors_per_query must be positive, got %d", cm.ErrInvalidArgument, c.NeighborsPerQuery)
	}
	return nil
}

// Index holds NumTables hash tables over the vectors of a collection.
// It keeps refs only; the collection owns the vectors.
type Index struct {
	mx      sync.RWMutex
	config  Config
	dims    int
	hasher  *Hasher
	vectors *vector.Collection
	store   store.Store
	seq     map[int]int // ref -> insertion sequence number
}

// Neighbor is a single query result
type Neighbor struct {
	Ref        int
	Vector     *vector.Vector
	Similarity float64
}

// TableStats describes bucket occupancy of a single table
type TableStats struct {
	Buckets   int
	MaxBucket int
}
