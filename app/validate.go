package app

import (
	"fmt"
	"math"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
	"gonum.org/v1/gonum/stat"
)

// DefaultFolds is the number of folds used to hide known scores
const DefaultFolds = 10

// ValidationResult holds imputation error of a method over the hidden scores
type ValidationResult struct {
	Method  string
	MAE     float64 // NaN when nothing hidden was imputed
	Hidden  int
	Imputed int
}

type hidden struct {
	ref   int
	coord int
	value float64
}

// hideFold turns every folds-th observed score into unknown one, starting
// from the fold-th; each vector keeps at least one observed score
func hideFold(vectors *vector.Collection, fold, folds int) ([]hidden, error) {
	res := make([]hidden, 0)
	counter := 0
	for _, ref := range vectors.Refs() {
		v := vectors.Get(ref)
		for c := 0; c < v.Dim(); c++ {
			if !v.Known(c) {
				continue
			}
			counter++
			if (counter-1)%folds != fold || v.NumKnown() < 2 {
				continue
			}
			value, _ := v.At(c)
			if err := v.Hide(c); err != nil {
				return nil, err
			}
			res = append(res, hidden{ref: ref, coord: c, value: value})
		}
	}
	return res, nil
}

// Validate hides folds of the known scores one after another, imputes them
// back with every method and reports mean absolute error
func (r *Recommender) Validate(ws *Workspace, folds int) ([]ValidationResult, error) {
	if folds < 2 {
		return nil, fmt.Errorf("%w: folds number must be at least 2, got %d", cm.ErrInvalidArgument, folds)
	}
	methods := []struct {
		name string
		fill func(*vector.Collection) error
	}{
		{MethodLSH, r.imputeLSH},
		{MethodCluster, r.imputeClusters},
	}
	results := make([]ValidationResult, 0, len(methods))
	for _, m := range methods {
		stop := cm.Timer(r.logger, "validate "+m.name)
		res := ValidationResult{Method: m.name}
		errs := make([]float64, 0)
		for fold := 0; fold < folds; fold++ {
			vectors := ws.Vectors.Clone()
			held, err := hideFold(vectors, fold, folds)
			if err != nil {
				return nil, err
			}
			if err := m.fill(vectors); err != nil {
				return nil, err
			}
			res.Hidden += len(held)
			for _, h := range held {
				v := vectors.Get(h.ref)
				if !v.Imputed(h.coord) {
					continue
				}
				got, _ := v.At(h.coord)
				errs = append(errs, math.Abs(got-h.value))
			}
		}
		res.Imputed = len(errs)
		res.MAE = math.NaN()
		if len(errs) > 0 {
			res.MAE = stat.Mean(errs, nil)
		}
		stop()
		results = append(results, res)
	}
	return results, nil
}
