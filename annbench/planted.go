package annbench

import (
	"fmt"
	"math/rand"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
)

// PlantedConfig describes synthetic data with known near duplicates
type PlantedConfig struct {
	NumPairs  int
	Dims      int
	KnownRate float64 // probability of a coordinate to be observed
	Noise     float64 // max relative perturbation of the duplicate's coordinates
	Seed      int64
}

// Pair links a base vector with its planted near duplicate
type Pair struct {
	Ref     int
	Partner int
}

// Planted generates NumPairs random sentiment vectors and a perturbed copy
// of each one sharing its observed coordinates. Perturbation is relative,
// so signs of the coordinates are kept when Noise < 1.
func Planted(config PlantedConfig) (*vector.Collection, []Pair, error) {
	if config.NumPairs <= 0 || config.Dims <= 0 {
		return nil, nil, fmt.Errorf("%w: pairs and dimensions numbers must be positive", cm.ErrInvalidArgument)
	}
	names := make([]string, config.Dims)
	for i := range names {
		names[i] = fmt.Sprintf("coin-%d", i)
	}
	ordering, err := vector.NewOrdering(names)
	if err != nil {
		return nil, nil, err
	}
	rnd := rand.New(rand.NewSource(config.Seed))
	vectors := vector.NewCollection(ordering)
	pairs := make([]Pair, 0, config.NumPairs)
	for p := 0; p < config.NumPairs; p++ {
		values := make([]float64, config.Dims)
		known := make([]bool, config.Dims)
		for i := range values {
			known[i] = rnd.Float64() < config.KnownRate
			values[i] = rnd.Float64()*2 - 1
		}
		// at least one observed coordinate
		known[rnd.Intn(config.Dims)] = true

		partner := make([]float64, config.Dims)
		for i := range partner {
			partner[i] = values[i] * (1 + (rnd.Float64()*2-1)*config.Noise)
		}
		base, err := vector.New(ordering, fmt.Sprintf("base-%d", p), values, known)
		if err != nil {
			return nil, nil, err
		}
		dup, err := vector.New(ordering, fmt.Sprintf("dup-%d", p), partner, known)
		if err != nil {
			return nil, nil, err
		}
		baseRef, err := vectors.Add(base)
		if err != nil {
			return nil, nil, err
		}
		dupRef, err := vectors.Add(dup)
		if err != nil {
			return nil, nil, err
		}
		pairs = append(pairs, Pair{Ref: baseRef, Partner: dupRef})
	}
	return vectors, pairs, nil
}

// PairRecall returns share of pairs whose partner is among the k results
// of querying the base vector
func PairRecall(searcher Searcher, vectors *vector.Collection, pairs []Pair, k int) (float64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	found := 0
	for _, pair := range pairs {
		refs, err := searcher.Search(vectors.Get(pair.Ref), k)
		if err != nil {
			return 0, err
		}
		for _, ref := range refs {
			if ref == pair.Partner {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(pairs)), nil
}
