package cluster

import (
	"fmt"
	"math/rand"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// membersPerCluster is used to derive clusters number when it's not set
const membersPerCluster = 10

// Config holds k-means parameters
type Config struct {
	NumClusters   int   `yaml:"num_clusters"` // 0 means ceil(n / 10)
	MaxIterations int   `yaml:"max_iterations"`
	Seed          int64 `yaml:"seed"`
}

// DefaultConfig returns config used when nothing is specified
func DefaultConfig() Config {
	return Config{
		NumClusters:   0,
		MaxIterations: 50,
		Seed:          1,
	}
}

// Validate checks config bounds
func (c Config) Validate() error {
	if c.NumClusters < 0 {
		return fmt.Errorf("%w: num_clusters can't be negative, got %d", cm.ErrInvalidArgument, c.NumClusters)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", cm.ErrInvalidArgument, c.MaxIterations)
	}
	return nil
}

// KMeans runs spherical k-means over the observed coordinates of the
// given vectors: points and centroids are unit-normalized and each point
// goes to the centroid with the largest cosine similarity.
func KMeans(vectors *vector.Collection, refs []int, config Config) (*Partition, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return NewPartition(nil)
	}
	dims := vectors.Ordering().Len()
	points := make([]blas64.Vector, len(refs))
	for i, ref := range refs {
		v := vectors.Get(ref)
		if v == nil {
			return nil, fmt.Errorf("%w: no vector with ref %d", cm.ErrInvalidArgument, ref)
		}
		if v.Dim() != dims {
			return nil, fmt.Errorf("%w: collection dimension %d, vector dimension %d", cm.ErrDimensionMismatch, dims, v.Dim())
		}
		points[i] = vector.Normalize(v.ObservedDense())
	}

	k := config.NumClusters
	if k == 0 {
		k = (len(refs) + membersPerCluster - 1) / membersPerCluster
	}
	if k > len(refs) {
		k = len(refs)
	}

	rnd := rand.New(rand.NewSource(config.Seed))
	centroids := make([]blas64.Vector, k)
	for c, i := range rnd.Perm(len(points))[:k] {
		data := make([]float64, dims)
		copy(data, points[i].Data)
		centroids[c] = vector.NewVec(data)
	}

	assignment := make([]int, len(points))
	for i := range assignment {
		assignment[i] = -1
	}
	for iter := 0; iter < config.MaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(p, centroids)
			if best != assignment[i] {
				assignment[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(points, assignment, centroids)
	}

	groups := make([][]int, k)
	for i, c := range assignment {
		groups[c] = append(groups[c], refs[i])
	}
	return NewPartition(groups)
}

// nearest returns index of the most similar centroid; ties go to the lowest index
func nearest(p blas64.Vector, centroids []blas64.Vector) int {
	best, bestSim := 0, vector.CosineSim(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if sim := vector.CosineSim(p, centroids[c]); sim > bestSim {
			best, bestSim = c, sim
		}
	}
	return best
}

// updateCentroids sets every centroid to the normalized mean direction
// of its points; centroids of empty clusters stay in place
func updateCentroids(points []blas64.Vector, assignment []int, centroids []blas64.Vector) {
	sums := make([][]float64, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, centroids[c].N)
	}
	counts := make([]int, len(centroids))
	for i, c := range assignment {
		floats.Add(sums[c], points[i].Data)
		counts[c]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		mean := vector.NewVec(sums[c])
		if vector.IsZeroVector(mean) {
			continue
		}
		centroids[c] = vector.Normalize(mean)
	}
}
