package topk

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasparian/crypto-recommend-go/vector"
)

func indices(entries []Entry) []int {
	res := make([]int, len(entries))
	for i, e := range entries {
		res[i] = e.Index
	}
	return res
}

func TestSelectSkipsKnown(t *testing.T) {
	t.Parallel()
	values := []float64{5, 9, 1, 7}
	known := map[int]bool{1: true}
	got := Select(values, 2, func(i int) bool { return !known[i] })
	assert.Equal(t, []int{3, 0}, indices(got))
	assert.Equal(t, []float64{7, 5}, []float64{got[0].Value, got[1].Value})
}

func TestSelectEdgeCases(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Select(nil, 3, nil))
	assert.Empty(t, Select([]float64{1, 2}, 0, nil))
	assert.Empty(t, Select([]float64{1, 2}, -1, nil))
	assert.Equal(t, []int{1, 0}, indices(Select([]float64{1, 2}, 5, nil)))
}

func TestSelectMatchesSort(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(17))
	for trial := 0; trial < 100; trial++ {
		values := make([]float64, 1+rnd.Intn(50))
		for i := range values {
			values[i] = float64(rnd.Intn(20))
		}
		n := 1 + rnd.Intn(10)
		got := Select(values, n, nil)

		sorted := append([]float64(nil), values...)
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
		if n > len(sorted) {
			n = len(sorted)
		}
		gotValues := make([]float64, len(got))
		for i, e := range got {
			gotValues[i] = e.Value
		}
		if !reflect.DeepEqual(gotValues, sorted[:n]) {
			t.Fatalf("Expected %v, got %v", sorted[:n], gotValues)
		}
	}
}

func TestOfferReplacesOnTies(t *testing.T) {
	t.Parallel()
	s := NewSelector(1)
	require.True(t, s.Offer(0, 3))
	assert.False(t, s.Offer(1, 2))
	assert.True(t, s.Offer(2, 3))
	assert.Equal(t, []Entry{{Index: 2, Value: 3}}, s.Drain())
	assert.Equal(t, 0, s.Len())
}

func TestRecommend(t *testing.T) {
	o, err := vector.NewOrdering([]string{"btc", "eth", "xrp", "ada", "doge"})
	require.NoError(t, err)
	v, err := vector.New(o, "u", []float64{5, 9, 0, 0, 0}, []bool{true, true, false, false, false})
	require.NoError(t, err)
	_, err = v.Fill(2, 1)
	require.NoError(t, err)
	_, err = v.Fill(3, 7)
	require.NoError(t, err)

	got := Recommend(v, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "ada", got[0].Name)
	assert.Equal(t, "xrp", got[1].Name)

	for _, named := range Recommend(v, 10) {
		assert.False(t, v.Known(named.Index), "known currency %v must not be recommended", named.Name)
		assert.NotEqual(t, "doge", named.Name, "coordinates without value must not be recommended")
	}
}
