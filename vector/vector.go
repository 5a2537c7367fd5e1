package vector

import (
	"fmt"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"gonum.org/v1/gonum/blas/blas64"
)

// Vector holds per-currency scores of a single author (or cluster).
// Coordinates which are neither observed nor imputed are kept at 0
// and must not be read as data.
type Vector struct {
	id       string
	ordering *Ordering
	values   []float64
	observed []bool
	imputed  []bool
}

// New creates vector over the ordering; known marks observed coordinates
func New(ordering *Ordering, id string, values []float64, known []bool) (*Vector, error) {
	dims := ordering.Len()
	if len(values) != dims || len(known) != dims {
		return nil, fmt.Errorf("%w: ordering has %d coordinates, got %d values and %d marks",
			cm.ErrDimensionMismatch, dims, len(values), len(known))
	}
	v := &Vector{
		id:       id,
		ordering: ordering,
		values:   make([]float64, dims),
		observed: make([]bool, dims),
		imputed:  make([]bool, dims),
	}
	for i := range values {
		if known[i] {
			v.values[i] = values[i]
			v.observed[i] = true
		}
	}
	return v, nil
}

// FromScores creates vector from accumulated per-currency scores;
// currencies absent from the map are unknown
func FromScores(ordering *Ordering, id string, scores map[string]float64) (*Vector, error) {
	dims := ordering.Len()
	values := make([]float64, dims)
	known := make([]bool, dims)
	for name, score := range scores {
		i, ok := ordering.Index(name)
		if !ok {
			return nil, fmt.Errorf("%w: currency %q is not tracked", cm.ErrInvalidArgument, name)
		}
		values[i] = score
		known[i] = true
	}
	return New(ordering, id, values, known)
}

// ID returns identity token of the vector
func (v *Vector) ID() string {
	return v.id
}

// Ordering returns the coordinate ordering the vector was built with
func (v *Vector) Ordering() *Ordering {
	return v.ordering
}

// Dim returns vector dimension
func (v *Vector) Dim() int {
	return len(v.values)
}

// At returns the i-th coordinate
func (v *Vector) At(i int) (float64, error) {
	if i < 0 || i >= len(v.values) {
		return 0, fmt.Errorf("%w: coordinate %d, dimension %d", cm.ErrIndexOutOfRange, i, len(v.values))
	}
	return v.values[i], nil
}

// Known reports whether the owner had a score for the i-th coordinate
func (v *Vector) Known(i int) bool {
	return i >= 0 && i < len(v.observed) && v.observed[i]
}

// Imputed reports whether the i-th coordinate has been filled by imputation
func (v *Vector) Imputed(i int) bool {
	return i >= 0 && i < len(v.imputed) && v.imputed[i]
}

// Has reports whether the i-th coordinate holds a value
func (v *Vector) Has(i int) bool {
	return v.Known(i) || v.Imputed(i)
}

// NumKnown returns number of observed coordinates
func (v *Vector) NumKnown() int {
	n := 0
	for _, ok := range v.observed {
		if ok {
			n++
		}
	}
	return n
}

// NumMissing returns number of coordinates holding no value
func (v *Vector) NumMissing() int {
	n := 0
	for i := range v.values {
		if !v.Has(i) {
			n++
		}
	}
	return n
}

// Fill writes an imputed value; coordinates which already hold a value are left untouched
func (v *Vector) Fill(i int, value float64) (bool, error) {
	if i < 0 || i >= len(v.values) {
		return false, fmt.Errorf("%w: coordinate %d, dimension %d", cm.ErrIndexOutOfRange, i, len(v.values))
	}
	if v.Has(i) {
		return false, nil
	}
	v.values[i] = value
	v.imputed[i] = true
	return true, nil
}

// Hide turns an observed coordinate into an unknown one.
// Used to hold out known values when validating imputation.
func (v *Vector) Hide(i int) error {
	if i < 0 || i >= len(v.values) {
		return fmt.Errorf("%w: coordinate %d, dimension %d", cm.ErrIndexOutOfRange, i, len(v.values))
	}
	v.values[i] = 0
	v.observed[i] = false
	v.imputed[i] = false
	return nil
}

// Clone returns a deep copy sharing the ordering
func (v *Vector) Clone() *Vector {
	c := &Vector{
		id:       v.id,
		ordering: v.ordering,
		values:   make([]float64, len(v.values)),
		observed: make([]bool, len(v.observed)),
		imputed:  make([]bool, len(v.imputed)),
	}
	copy(c.values, v.values)
	copy(c.observed, v.observed)
	copy(c.imputed, v.imputed)
	return c
}

// ObservedDense returns blas vector with observed values and zeros elsewhere
func (v *Vector) ObservedDense() blas64.Vector {
	data := make([]float64, len(v.values))
	for i, ok := range v.observed {
		if ok {
			data[i] = v.values[i]
		}
	}
	return NewVec(data)
}

// Cosine calculates cosine similarity of two vectors over the coordinates
// observed in both of them; returns 0 when any of the restricted norms is 0
func Cosine(a, b *Vector) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("%w: %d vs %d", cm.ErrDimensionMismatch, a.Dim(), b.Dim())
	}
	xa := make([]float64, 0, len(a.values))
	xb := make([]float64, 0, len(b.values))
	for i := range a.values {
		if a.observed[i] && b.observed[i] {
			xa = append(xa, a.values[i])
			xb = append(xb, b.values[i])
		}
	}
	return CosineSim(NewVec(xa), NewVec(xb)), nil
}
