package lsh

import (
	"fmt"
	"math"
	"math/rand"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
	"gonum.org/v1/gonum/blas/blas64"
)

// plane is a random hyperplane through the origin given by its unit normal
type plane struct {
	n blas64.Vector
}

func (p *plane) getProductSign(vec blas64.Vector) bool {
	prod := blas64.Dot(vec, p.n)
	return math.Signbit(prod) // NOTE: returns true if product < 0
}

// HasherConfig holds parameters of the random projections
type HasherConfig struct {
	NTables int
	NPlanes int
	Dims    int
	Seed    int64
}

// Hasher holds NTables sets of NPlanes hyperplanes each
type Hasher struct {
	Config HasherConfig
	tables [][]plane
}

// NewHasher generates the hyperplanes. Tables are drawn one after another
// from a single seeded source, so hashers built with the same seed and
// dimension share their leading tables.
func NewHasher(config HasherConfig) (*Hasher, error) {
	if config.Dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions number must be a positive integer", cm.ErrInvalidArgument)
	}
	if config.NTables <= 0 {
		return nil, fmt.Errorf("%w: tables number must be a positive integer", cm.ErrInvalidArgument)
	}
	if config.NPlanes <= 0 || config.NPlanes > maxHashWidth {
		return nil, fmt.Errorf("%w: planes number must be in [1, %d]", cm.ErrInvalidArgument, maxHashWidth)
	}
	rnd := rand.New(rand.NewSource(config.Seed))
	hasher := &Hasher{
		Config: config,
		tables: make([][]plane, config.NTables),
	}
	for i := range hasher.tables {
		planes := make([]plane, config.NPlanes)
		for j := range planes {
			planes[j] = getRandomPlane(rnd, config.Dims)
		}
		hasher.tables[i] = planes
	}
	return hasher, nil
}

// getRandomPlane samples a normal from the standard gaussian,
// which gives a uniformly distributed direction after normalization
func getRandomPlane(rnd *rand.Rand, dims int) plane {
	coefs := make([]float64, dims)
	for {
		for i := range coefs {
			coefs[i] = rnd.NormFloat64()
		}
		n := vector.NewVec(coefs)
		if !vector.IsZeroVector(n) {
			return plane{n: vector.Normalize(n)}
		}
	}
}

// getHash calculates table signature: bit i is set when the vector
// lies on the non-negative side of the i-th hyperplane
func (hasher *Hasher) getHash(table int, vec blas64.Vector) uint64 {
	var hash uint64
	for i := range hasher.tables[table] {
		if !hasher.tables[table][i].getProductSign(vec) {
			hash |= (1 << uint(i))
		}
	}
	return hash
}

// getHashes returns signature for every table
func (hasher *Hasher) getHashes(vec blas64.Vector) []uint64 {
	hashes := make([]uint64, len(hasher.tables))
	for i := range hasher.tables {
		hashes[i] = hasher.getHash(i, vec)
	}
	return hashes
}

// Hashes returns signature of the vector's observed coordinates for every table
func (hasher *Hasher) Hashes(v *vector.Vector) ([]uint64, error) {
	if v.Dim() != hasher.Config.Dims {
		return nil, fmt.Errorf("%w: hasher dimension %d, vector dimension %d",
			cm.ErrDimensionMismatch, hasher.Config.Dims, v.Dim())
	}
	return hasher.getHashes(v.ObservedDense()), nil
}
