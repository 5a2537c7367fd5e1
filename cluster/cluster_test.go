package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/vector"
)

func TestPartition(t *testing.T) {
	p, err := NewPartition([][]int{{4, 0, 2}, {}, {1, 3}})
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	c, ok := p.Of(2)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 4}, c.Members())
	assert.Equal(t, c.Members(), c.Members(), "member order must be stable")
	assert.Equal(t, "cluster-0", c.Name())
	assert.Equal(t, 3, c.Len())

	assert.Equal(t, []int{0, 4}, p.Peers(2))
	assert.Equal(t, []int{1}, p.Peers(3))
	assert.Empty(t, p.Peers(42))

	members := c.Members()
	members[0] = 100
	assert.Equal(t, []int{0, 2, 4}, c.Members(), "Members must return a copy")

	_, err = NewPartition([][]int{{0, 1}, {1}})
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
}

func newCollection(t *testing.T, rows [][]float64) *vector.Collection {
	o, err := vector.NewOrdering([]string{"btc", "eth", "xrp", "ada"})
	require.NoError(t, err)
	c := vector.NewCollection(o)
	for _, row := range rows {
		known := make([]bool, len(row))
		for i, val := range row {
			known[i] = val != 0
		}
		v, err := vector.New(o, "", row, known)
		require.NoError(t, err)
		_, err = c.Add(v)
		require.NoError(t, err)
	}
	return c
}

func TestKMeansSeparatesGroups(t *testing.T) {
	c := newCollection(t, [][]float64{
		{1, 0.9, 0, 0},
		{0, 0, 1, 0.8},
		{0.8, 1, 0, 0},
		{0, 0, 0.9, 1},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
	})
	for seed := int64(0); seed < 20; seed++ {
		p, err := KMeans(c, c.Refs(), Config{NumClusters: 2, MaxIterations: 20, Seed: seed})
		require.NoError(t, err)
		require.Equal(t, 2, p.Len(), "seed %v", seed)
		first, _ := p.Of(0)
		second, _ := p.Of(1)
		assert.Equal(t, []int{0, 2, 4}, first.Members(), "seed %v", seed)
		assert.Equal(t, []int{1, 3, 5}, second.Members(), "seed %v", seed)
	}
}

func TestKMeansClusterCount(t *testing.T) {
	rows := make([][]float64, 25)
	for i := range rows {
		rows[i] = []float64{float64(i%3 + 1), float64(i%5 + 1), 0, 1}
	}
	c := newCollection(t, rows)

	p, err := KMeans(c, c.Refs(), DefaultConfig())
	require.NoError(t, err)
	assert.LessOrEqual(t, p.Len(), 3)
	total := 0
	for _, cl := range p.Clusters() {
		total += cl.Len()
	}
	assert.Equal(t, 25, total, "every ref must be assigned")

	p, err = KMeans(c, c.Refs()[:2], Config{NumClusters: 10, MaxIterations: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, p.Len(), 2)

	p, err = KMeans(c, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestKMeansConfig(t *testing.T) {
	c := newCollection(t, [][]float64{{1, 0, 0, 0}})
	_, err := KMeans(c, c.Refs(), Config{NumClusters: -1, MaxIterations: 1})
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
	_, err = KMeans(c, c.Refs(), Config{MaxIterations: 0})
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
	_, err = KMeans(c, []int{7}, DefaultConfig())
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
}
