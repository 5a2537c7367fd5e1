package annbench

import (
	"fmt"
	"sort"
	"time"

	"github.com/cheggaaa/pb/v3"
	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/lsh"
	"github.com/gasparian/crypto-recommend-go/vector"
)

// Searcher returns refs of up to k vectors most similar to the query
type Searcher interface {
	Search(query *vector.Vector, k int) ([]int, error)
}

// PrecisionRecall returns ratio of relevant predictions over all predictions
// and over all the true relevant items; groundTruth MUST BE SORTED
func PrecisionRecall(prediction, groundTruth []int) (float64, float64) {
	valid := 0
	for _, val := range prediction {
		idx := sort.SearchInts(groundTruth, val)
		if idx < len(groundTruth) && groundTruth[idx] == val {
			valid++
		}
	}
	precision := 0.0
	if len(prediction) > 0 {
		precision = float64(valid) / float64(len(prediction))
	}
	recall := 1.0
	if len(groundTruth) > 0 {
		recall = float64(valid) / float64(len(groundTruth))
	}
	return precision, recall
}

// LSHSearcher adapts lsh.Index to the Searcher interface
type LSHSearcher struct {
	Index *lsh.Index
}

// Search drains the index query result
func (s LSHSearcher) Search(query *vector.Vector, k int) ([]int, error) {
	neighbors, err := s.Index.Query(query, k)
	if err != nil {
		return nil, err
	}
	refs := make([]int, 0, neighbors.Len())
	for nb, ok := neighbors.Next(); ok; nb, ok = neighbors.Next() {
		refs = append(refs, nb.Ref)
	}
	return refs, nil
}

// BruteForce compares the query with every vector of the collection
type BruteForce struct {
	vectors *vector.Collection
}

// NewBruteForce creates exhaustive searcher over the collection
func NewBruteForce(vectors *vector.Collection) *BruteForce {
	return &BruteForce{vectors: vectors}
}

// Search returns exact top-k by cosine similarity, ties keep ref order;
// the query itself is excluded
func (bf *BruteForce) Search(query *vector.Vector, k int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: neighbors number must be positive, got %d", cm.ErrInvalidArgument, k)
	}
	type scored struct {
		ref int
		sim float64
	}
	all := make([]scored, 0, bf.vectors.Len())
	for _, ref := range bf.vectors.Refs() {
		v := bf.vectors.Get(ref)
		if v == query || (len(query.ID()) > 0 && v.ID() == query.ID()) {
			continue
		}
		sim, err := vector.Cosine(query, v)
		if err != nil {
			return nil, err
		}
		all = append(all, scored{ref: ref, sim: sim})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].sim > all[j].sim
	})
	if len(all) > k {
		all = all[:k]
	}
	refs := make([]int, len(all))
	for i, s := range all {
		refs[i] = s.ref
	}
	return refs, nil
}

// Report holds averaged search quality
type Report struct {
	Precision    float64
	Recall       float64
	AvgQueryTime time.Duration
}

// Evaluate compares searcher results with the exact ones for every query ref
func Evaluate(searcher Searcher, exact Searcher, vectors *vector.Collection, queries []int, k int, progress bool) (Report, error) {
	report := Report{}
	if len(queries) == 0 {
		return report, nil
	}
	var bar *pb.ProgressBar
	if progress {
		bar = pb.StartNew(len(queries))
		defer bar.Finish()
	}
	var total time.Duration
	for _, ref := range queries {
		query := vectors.Get(ref)
		if query == nil {
			return report, fmt.Errorf("%w: no vector with ref %d", cm.ErrInvalidArgument, ref)
		}
		truth, err := exact.Search(query, k)
		if err != nil {
			return report, err
		}
		sort.Ints(truth)
		start := time.Now()
		predicted, err := searcher.Search(query, k)
		if err != nil {
			return report, err
		}
		total += time.Since(start)
		p, r := PrecisionRecall(predicted, truth)
		report.Precision += p
		report.Recall += r
		if bar != nil {
			bar.Increment()
		}
	}
	n := float64(len(queries))
	report.Precision /= n
	report.Recall /= n
	report.AvgQueryTime = total / time.Duration(len(queries))
	return report, nil
}
