package app

import (
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gasparian/crypto-recommend-go/cluster"
	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/impute"
	"github.com/gasparian/crypto-recommend-go/lsh"
	"github.com/gasparian/crypto-recommend-go/sentiment"
	"github.com/gasparian/crypto-recommend-go/store/kv"
	"github.com/gasparian/crypto-recommend-go/topk"
	"github.com/gasparian/crypto-recommend-go/vector"
	"github.com/rs/zerolog"
)

// Report section titles, one per neighbors source
const (
	MethodLSH     = "Cosine LSH"
	MethodCluster = "Clustering"
)

// Workspace holds the vectors of a run built over a single ordering
type Workspace struct {
	Ordering *vector.Ordering
	Vectors  *vector.Collection
}

// Row holds recommendations for a single user
type Row struct {
	UserID     string
	Currencies []topk.Named
}

// Section holds results of a single recommendation method
type Section struct {
	Method    string
	StartedAt time.Time
	Elapsed   time.Duration
	Rows      []Row
}

// Recommender runs imputation over a workspace with both neighbor sources
type Recommender struct {
	config   Config
	mode     impute.Mode
	logger   zerolog.Logger
	progress bool
}

// NewRecommender validates config and creates recommender;
// progress turns on progress bars for the long loops
func NewRecommender(config Config, lg zerolog.Logger, progress bool) (*Recommender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	mode, err := impute.ParseMode(config.Impute.Mode)
	if err != nil {
		return nil, err
	}
	return &Recommender{
		config:   config,
		mode:     mode,
		logger:   lg,
		progress: progress,
	}, nil
}

// Config returns recommender config
func (r *Recommender) Config() Config {
	return r.config
}

// NewWorkspace builds a vector per author over the tracked currencies.
// Authors whose observed scores are all zero carry no direction and are skipped.
func (r *Recommender) NewWorkspace(currencies []string, authors []sentiment.Author) (*Workspace, error) {
	ordering, err := vector.NewOrdering(currencies)
	if err != nil {
		return nil, err
	}
	if ordering.Len() == 0 {
		return nil, fmt.Errorf("%w: no tracked currencies", cm.ErrInvalidArgument)
	}
	vectors := vector.NewCollection(ordering)
	skipped := 0
	for _, author := range authors {
		scores := author.Scores
		if r.config.Sentiment.Center {
			scores = author.Centered()
		}
		v, err := vector.FromScores(ordering, author.ID, scores)
		if err != nil {
			return nil, fmt.Errorf("author %s: %w", author.ID, err)
		}
		if v.NumKnown() == 0 || vector.IsZeroVector(v.ObservedDense()) {
			skipped++
			continue
		}
		if _, err := vectors.Add(v); err != nil {
			return nil, fmt.Errorf("author %s: %w", author.ID, err)
		}
	}
	r.logger.Info().
		Str("authors", humanize.Comma(int64(vectors.Len()))).
		Str("skipped", humanize.Comma(int64(skipped))).
		Int("currencies", ordering.Len()).
		Msg("workspace ready")
	return &Workspace{Ordering: ordering, Vectors: vectors}, nil
}

// neighborsFunc returns neighbors of the ref's vector
type neighborsFunc func(ref int) ([]*vector.Vector, error)

// imputeAll fills every vector with missing coordinates using neighbors
// returned by nf; vectors are filled in ref order
func (r *Recommender) imputeAll(vectors *vector.Collection, nf neighborsFunc) error {
	refs := vectors.Refs()
	imp := impute.New(r.mode)
	var bar *pb.ProgressBar
	if r.progress {
		bar = pb.StartNew(len(refs))
		defer bar.Finish()
	}
	filled := 0
	for _, ref := range refs {
		v := vectors.Get(ref)
		if v.NumMissing() > 0 {
			neighbors, err := nf(ref)
			if err != nil {
				return err
			}
			res, err := imp.Impute(v, neighbors)
			if err != nil {
				return fmt.Errorf("impute %s: %w", v.ID(), err)
			}
			filled += res.Filled
		}
		if bar != nil {
			bar.Increment()
		}
	}
	r.logger.Debug().Str("filled", humanize.Comma(int64(filled))).Msg("imputation done")
	return nil
}

// imputeLSH indexes vectors and fills them from their approximate nearest neighbors
func (r *Recommender) imputeLSH(vectors *vector.Collection) error {
	config := r.config.LSH
	index, err := lsh.NewIndex(config, vectors.Ordering().Len(), vectors, kv.NewKVStore(config.NumTables))
	if err != nil {
		return err
	}
	if err := index.Build(vectors.Refs()); err != nil {
		return err
	}
	for table, stats := range index.Stats() {
		r.logger.Debug().Int("table", table).Int("buckets", stats.Buckets).Int("max_bucket", stats.MaxBucket).Msg("lsh table")
	}
	return r.imputeAll(vectors, func(ref int) ([]*vector.Vector, error) {
		neighbors, err := index.Query(vectors.Get(ref), config.NeighborsPerQuery)
		if err != nil {
			return nil, err
		}
		return neighbors.Vectors(), nil
	})
}

// imputeClusters partitions vectors and fills them from their cluster peers
func (r *Recommender) imputeClusters(vectors *vector.Collection) error {
	partition, err := cluster.KMeans(vectors, vectors.Refs(), r.config.Cluster)
	if err != nil {
		return err
	}
	r.logger.Debug().Int("clusters", partition.Len()).Msg("clustering done")
	return r.imputeAll(vectors, func(ref int) ([]*vector.Vector, error) {
		peers := partition.Peers(ref)
		neighbors := make([]*vector.Vector, len(peers))
		for i, peer := range peers {
			neighbors[i] = vectors.Get(peer)
		}
		return neighbors, nil
	})
}

func (r *Recommender) recommend(ws *Workspace, method string, topN int, fill func(*vector.Collection) error) (Section, error) {
	section := Section{Method: method, StartedAt: time.Now()}
	stop := cm.Timer(r.logger, method)
	vectors := ws.Vectors.Clone()
	if err := fill(vectors); err != nil {
		return section, err
	}
	for _, ref := range vectors.Refs() {
		v := vectors.Get(ref)
		section.Rows = append(section.Rows, Row{UserID: v.ID(), Currencies: topk.Recommend(v, topN)})
	}
	section.Elapsed = stop()
	return section, nil
}

// RecommendLSH reports top currencies per user imputed from LSH neighbors;
// the workspace vectors are left untouched
func (r *Recommender) RecommendLSH(ws *Workspace) (Section, error) {
	return r.recommend(ws, MethodLSH, r.config.Report.TopN, r.imputeLSH)
}

// RecommendClusters reports top currencies per user imputed from cluster peers;
// the workspace vectors are left untouched
func (r *Recommender) RecommendClusters(ws *Workspace) (Section, error) {
	return r.recommend(ws, MethodCluster, r.config.Report.ClusterTopN, r.imputeClusters)
}
