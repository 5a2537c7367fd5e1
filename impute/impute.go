package impute

import (
	"fmt"
	"strings"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
)

// Mode selects the denominator of the weighted average
type Mode int

const (
	// GlobalSum divides by the similarity sum over all neighbors,
	// whether they observe the coordinate or not. A coordinate that no
	// neighbor observes stays unknown instead of becoming 0/SimSum = 0;
	// both modes leave it unfilled.
	GlobalSum Mode = iota
	// PerCoordinate divides by the similarity sum over the neighbors
	// which observe the coordinate
	PerCoordinate
)

func (m Mode) String() string {
	switch m {
	case GlobalSum:
		return "global"
	case PerCoordinate:
		return "per-coordinate"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts config value into Mode; empty string means GlobalSum
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global":
		return GlobalSum, nil
	case "per-coordinate", "per_coordinate", "coordinate":
		return PerCoordinate, nil
	}
	return GlobalSum, fmt.Errorf("%w: unknown imputation mode %q", cm.ErrInvalidArgument, s)
}

// Result describes a single Impute call
type Result struct {
	Filled int     // number of coordinates filled
	SimSum float64 // similarity sum over all neighbors
}

// Imputer fills unknown coordinates with similarity-weighted averages
// of the neighbors' observed values
type Imputer struct {
	mode Mode
}

// New creates imputer working in the given mode
func New(mode Mode) *Imputer {
	return &Imputer{mode: mode}
}

// Mode returns imputer mode
func (imp *Imputer) Mode() Mode {
	return imp.mode
}

// Impute computes similarities of the target to every neighbor and fills
// the target's unknown coordinates in place. Observed coordinates are never written.
func (imp *Imputer) Impute(target *vector.Vector, neighbors []*vector.Vector) (Result, error) {
	sims := make([]float64, len(neighbors))
	for i, n := range neighbors {
		sim, err := vector.Cosine(target, n)
		if err != nil {
			return Result{}, err
		}
		sims[i] = sim
	}
	return imp.ImputeWeighted(target, neighbors, sims)
}

// ImputeWeighted fills unknown coordinates using precomputed similarities;
// sims[i] is the weight of neighbors[i]
func (imp *Imputer) ImputeWeighted(target *vector.Vector, neighbors []*vector.Vector, sims []float64) (Result, error) {
	if len(sims) != len(neighbors) {
		return Result{}, fmt.Errorf("%w: %d neighbors, %d similarities", cm.ErrInvalidArgument, len(neighbors), len(sims))
	}
	dims := target.Dim()
	for _, n := range neighbors {
		if n.Dim() != dims {
			return Result{}, fmt.Errorf("%w: target dimension %d, neighbor dimension %d", cm.ErrDimensionMismatch, dims, n.Dim())
		}
	}

	res := Result{}
	for _, sim := range sims {
		res.SimSum += sim
	}
	if len(neighbors) == 0 {
		return res, nil
	}

	for c := 0; c < dims; c++ {
		if target.Has(c) {
			continue
		}
		var num, den float64
		observed := 0
		for i, n := range neighbors {
			if !n.Known(c) {
				continue
			}
			val, _ := n.At(c)
			num += sims[i] * val
			den += sims[i]
			observed++
		}
		if observed == 0 {
			continue
		}
		if imp.mode == GlobalSum {
			den = res.SimSum
		}
		if den == 0 {
			continue
		}
		ok, err := target.Fill(c, num/den)
		if err != nil {
			return res, err
		}
		if ok {
			res.Filled++
		}
	}
	return res, nil
}
