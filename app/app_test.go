package app

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/sentiment"
	"github.com/gasparian/crypto-recommend-go/storage"
	"github.com/gasparian/crypto-recommend-go/topk"
)

var currencies = []string{"ada", "btc", "eth", "xrp"}

func testAuthors() []sentiment.Author {
	return []sentiment.Author{
		{ID: "a", Scores: map[string]float64{"btc": 1, "eth": 1}},
		{ID: "b", Scores: map[string]float64{"btc": 1, "eth": 1, "xrp": 0.8}},
		{ID: "c", Scores: map[string]float64{"ada": 1, "xrp": 0.2}},
		{ID: "z", Scores: map[string]float64{"btc": 0}},
	}
}

func testConfig() Config {
	config := DefaultConfig()
	config.LSH.NumTables = 30
	config.LSH.HashWidth = 1
	config.LSH.NeighborsPerQuery = 5
	config.Cluster.NumClusters = 1
	config.Report.TopN = 1
	config.Report.ClusterTopN = 1
	return config
}

func newTestRecommender(t *testing.T) (*Recommender, *Workspace) {
	r, err := NewRecommender(testConfig(), zerolog.Nop(), false)
	require.NoError(t, err)
	ws, err := r.NewWorkspace(currencies, testAuthors())
	require.NoError(t, err)
	return r, ws
}

func rowOf(t *testing.T, s Section, userID string) Row {
	for _, row := range s.Rows {
		if row.UserID == userID {
			return row
		}
	}
	t.Fatalf("No row for %s in %s", userID, s.Method)
	return Row{}
}

func TestNewWorkspace(t *testing.T) {
	r, ws := newTestRecommender(t)
	assert.Equal(t, 3, ws.Vectors.Len(), "authors with zero scores must be skipped")
	_, ok := ws.Vectors.Lookup("z")
	assert.False(t, ok)

	_, err := r.NewWorkspace(currencies, []sentiment.Author{{ID: "x", Scores: map[string]float64{"doge": 1}}})
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
	_, err = r.NewWorkspace(nil, testAuthors())
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
}

func TestNewWorkspaceCentered(t *testing.T) {
	config := testConfig()
	config.Sentiment.Center = true
	r, err := NewRecommender(config, zerolog.Nop(), false)
	require.NoError(t, err)
	ws, err := r.NewWorkspace(currencies, testAuthors())
	require.NoError(t, err)

	ref, ok := ws.Vectors.Lookup("c")
	require.True(t, ok)
	val, err := ws.Vectors.Get(ref).At(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, val, 1e-12)
	_, ok = ws.Vectors.Lookup("a")
	assert.False(t, ok, "centered equal scores make a zero vector")
}

func TestRecommend(t *testing.T) {
	r, ws := newTestRecommender(t)
	methods := map[string]func(*Workspace) (Section, error){
		MethodLSH:     r.RecommendLSH,
		MethodCluster: r.RecommendClusters,
	}
	for name, recommend := range methods {
		t.Run(name, func(t *testing.T) {
			section, err := recommend(ws)
			require.NoError(t, err)
			assert.Equal(t, name, section.Method)
			require.Len(t, section.Rows, 3)

			a := rowOf(t, section, "a")
			require.Len(t, a.Currencies, 1)
			assert.Equal(t, "xrp", a.Currencies[0].Name)
			assert.InDelta(t, 0.8, a.Currencies[0].Value, 1e-9)

			for _, row := range section.Rows {
				ref, _ := ws.Vectors.Lookup(row.UserID)
				v := ws.Vectors.Get(ref)
				for _, c := range row.Currencies {
					assert.False(t, v.Known(c.Index), "%s already knows %s", row.UserID, c.Name)
				}
			}
		})
	}

	for _, ref := range ws.Vectors.Refs() {
		v := ws.Vectors.Get(ref)
		for c := 0; c < v.Dim(); c++ {
			assert.False(t, v.Imputed(c), "workspace vectors must not be modified")
		}
	}
}

func TestValidate(t *testing.T) {
	r, ws := newTestRecommender(t)
	results, err := r.Validate(ws, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Greater(t, res.Hidden, 0)
		assert.LessOrEqual(t, res.Imputed, res.Hidden)
		if res.Imputed > 0 {
			assert.False(t, math.IsNaN(res.MAE))
			assert.GreaterOrEqual(t, res.MAE, 0.0)
		}
	}
	_, err = r.Validate(ws, 1)
	assert.ErrorIs(t, err, cm.ErrInvalidArgument)
}

func TestHideFold(t *testing.T) {
	_, ws := newTestRecommender(t)
	vectors := ws.Vectors.Clone()
	held, err := hideFold(vectors, 0, 2)
	require.NoError(t, err)
	require.NotEmpty(t, held)
	for _, h := range held {
		v := vectors.Get(h.ref)
		assert.False(t, v.Has(h.coord))
		assert.GreaterOrEqual(t, v.NumKnown(), 1)
		assert.True(t, ws.Vectors.Get(h.ref).Known(h.coord))
	}
}

func testSection() Section {
	return Section{
		Method:    MethodLSH,
		StartedAt: time.Unix(1000, 0),
		Elapsed:   1500 * time.Millisecond,
		Rows: []Row{
			{UserID: "a", Currencies: []topk.Named{
				{Entry: topk.Entry{Index: 3, Value: 0.8}, Name: "xrp"},
				{Entry: topk.Entry{Index: 0, Value: 0.1}, Name: "ada"},
			}},
			{UserID: "b"},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, testSection()))
	assert.Equal(t, "Cosine LSH\na xrp ada\nb\nExecution Time: 1.5s\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteValidation(&buf, []ValidationResult{{Method: MethodCluster, MAE: 0.25}}))
	assert.Equal(t, "Clustering Recommendation MAE: 0.25\n", buf.String())

	buf.Reset()
	WriteSummary(&buf, []Section{testSection()})
	assert.True(t, strings.Contains(buf.String(), "Cosine LSH"))
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	st, err := storage.Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	id, err := Save(ctx, st, testSection())
	require.NoError(t, err)
	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, int64(1500), runs[0].ElapsedMs)
	assert.Equal(t, 2, runs[0].NumAuthors)

	recs, err := st.Recommendations(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "xrp", recs[0].Currency)
	assert.Equal(t, 1, recs[1].Rank)
}
