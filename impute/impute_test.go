package impute

import (
	"errors"
	"math"
	"testing"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
)

const tol = 1e-9

type fixture struct {
	t *testing.T
	o *vector.Ordering
}

func newFixture(t *testing.T, dims int) fixture {
	names := make([]string, dims)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	o, err := vector.NewOrdering(names)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{t: t, o: o}
}

// vec builds vector from values where NaN marks unknown coordinates
func (f fixture) vec(id string, values ...float64) *vector.Vector {
	known := make([]bool, len(values))
	data := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			known[i] = true
			data[i] = v
		}
	}
	v, err := vector.New(f.o, id, data, known)
	if err != nil {
		f.t.Fatal(err)
	}
	return v
}

var unknown = math.NaN()

func TestParseMode(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Mode{"": GlobalSum, "global": GlobalSum, "Per-Coordinate": PerCoordinate} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("median"); !errors.Is(err, cm.ErrInvalidArgument) {
		t.Error("Unknown mode must be rejected")
	}
}

func TestImputeWeightedAverage(t *testing.T) {
	f := newFixture(t, 2)
	target := f.vec("v", 2, unknown)
	n1 := f.vec("n1", 4, 6)
	n2 := f.vec("n2", 0, 6)

	res, err := New(GlobalSum).Impute(target, []*vector.Vector{n1, n2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Filled != 1 || math.Abs(res.SimSum-1.0) > tol {
		t.Fatalf("Unexpected result %+v", res)
	}
	val, _ := target.At(1)
	if math.Abs(val-6.0) > tol {
		t.Fatalf("Expected 6.0, got %v", val)
	}
	if !target.Imputed(1) || target.Known(1) {
		t.Fatal("Filled coordinate must be marked as imputed")
	}
}

func TestImputeKeepsKnownValues(t *testing.T) {
	f := newFixture(t, 4)
	target := f.vec("v", 0.1, unknown, 0.3, unknown)
	before := make([]uint64, 4)
	for i := range before {
		val, _ := target.At(i)
		before[i] = math.Float64bits(val)
	}
	neighbors := []*vector.Vector{
		f.vec("n1", 0.9, 0.5, 0.2, 0.7),
		f.vec("n2", 0.2, 0.1, 0.8, unknown),
	}
	if _, err := New(GlobalSum).Impute(target, neighbors); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 2} {
		val, _ := target.At(i)
		if math.Float64bits(val) != before[i] {
			t.Fatalf("Known coordinate %v was overwritten", i)
		}
	}
	if !target.Imputed(1) || !target.Imputed(3) {
		t.Fatal("Unknown coordinates must be filled")
	}
}

func TestImputeNoNeighbors(t *testing.T) {
	f := newFixture(t, 3)
	target := f.vec("v", 1, unknown, unknown)
	res, err := New(GlobalSum).Impute(target, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Filled != 0 || target.NumMissing() != 2 {
		t.Fatal("Imputation without neighbors must be a no-op")
	}
}

func TestImputeZeroSimilaritySum(t *testing.T) {
	f := newFixture(t, 3)
	target := f.vec("v", 1, 0, unknown)
	orthogonal := f.vec("n", 0, 1, 5)
	for _, mode := range []Mode{GlobalSum, PerCoordinate} {
		res, err := New(mode).Impute(target, []*vector.Vector{orthogonal})
		if err != nil {
			t.Fatal(err)
		}
		if res.Filled != 0 || target.Has(2) {
			t.Fatalf("Mode %v: zero similarity sum must leave coordinates unknown", mode)
		}
	}
}

func TestImputeUnobservedCoordinateStaysUnknown(t *testing.T) {
	f := newFixture(t, 3)
	target := f.vec("v", 1, unknown, unknown)
	n := f.vec("n", 1, 2, unknown)
	if _, err := New(GlobalSum).Impute(target, []*vector.Vector{n}); err != nil {
		t.Fatal(err)
	}
	if !target.Has(1) || target.Has(2) {
		t.Fatal("Only coordinates observed by some neighbor can be filled")
	}
}

func TestImputeModes(t *testing.T) {
	f := newFixture(t, 2)
	// both neighbors are parallel to the target on the joint support,
	// only the first one observes coordinate 1
	neighbors := []*vector.Vector{
		f.vec("n1", 1, 4),
		f.vec("n2", 3, unknown),
	}

	global := f.vec("v", 2, unknown)
	if _, err := New(GlobalSum).Impute(global, neighbors); err != nil {
		t.Fatal(err)
	}
	if val, _ := global.At(1); math.Abs(val-2.0) > tol {
		t.Fatalf("Global sum mode: expected 2.0, got %v", val)
	}

	perCoord := f.vec("v", 2, unknown)
	if _, err := New(PerCoordinate).Impute(perCoord, neighbors); err != nil {
		t.Fatal(err)
	}
	if val, _ := perCoord.At(1); math.Abs(val-4.0) > tol {
		t.Fatalf("Per-coordinate mode: expected 4.0, got %v", val)
	}
}

func TestImputeWeighted(t *testing.T) {
	f := newFixture(t, 2)
	target := f.vec("v", 1, unknown)
	neighbors := []*vector.Vector{f.vec("n1", 1, 2), f.vec("n2", 1, 8)}

	if _, err := New(GlobalSum).ImputeWeighted(target, neighbors, []float64{1}); !errors.Is(err, cm.ErrInvalidArgument) {
		t.Fatal("Similarities must be parallel to neighbors")
	}
	res, err := New(GlobalSum).ImputeWeighted(target, neighbors, []float64{0.75, 0.25})
	if err != nil || res.Filled != 1 {
		t.Fatal(err)
	}
	if val, _ := target.At(1); math.Abs(val-3.5) > tol {
		t.Fatalf("Expected 3.5, got %v", val)
	}
}

func TestImputeDimensionMismatch(t *testing.T) {
	target := newFixture(t, 2).vec("v", 1, unknown)
	wide := newFixture(t, 3).vec("n", 1, 2, 3)
	if _, err := New(GlobalSum).Impute(target, []*vector.Vector{wide}); !errors.Is(err, cm.ErrDimensionMismatch) {
		t.Fatal("Neighbors of another dimension must fail with ErrDimensionMismatch")
	}
	if target.Has(1) {
		t.Fatal("Target must not be modified on error")
	}
}
