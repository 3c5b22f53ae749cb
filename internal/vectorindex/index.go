// Package vectorindex owns the in-memory vector index and its two
// companion artifacts: a dense-vector file and a metadata lookup file. The
// vector list and the record list always have the same cardinality and the
// same insertion order; divergence is corruption, not something to repair.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	// ErrNotFound means no complete artifact pair exists at the location.
	// A half-present pair is equivalent to absent.
	ErrNotFound = errors.New("index not found")
	// ErrCorrupt means the companion artifacts disagree with each other.
	ErrCorrupt = errors.New("index corrupt")
)

// Record is the lookup entry mapping one vector back to its chunk.
type Record struct {
	Text     string
	Metadata map[string]string
}

// Scored is one search hit.
type Scored struct {
	Record Record
	Score  float64
}

// Index is an append-only brute-force cosine index guarded for concurrent
// readers.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	records []Record
}

func NewIndex() *Index {
	return &Index{}
}

// Add appends vectors with their records. Purely additive: existing
// entries are never touched.
func (idx *Index) Add(vectors [][]float32, records []Record) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %d vectors for %d records", ErrCorrupt, len(vectors), len(records))
	}
	if len(vectors) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dim == 0 {
		idx.dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != idx.dim {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), idx.dim)
		}
	}
	idx.vectors = append(idx.vectors, vectors...)
	idx.records = append(idx.records, records...)
	return nil
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Snapshot copies the parallel lists in insertion order, for serialization.
func (idx *Index) Snapshot() ([][]float32, []Record) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	vectors := make([][]float32, len(idx.vectors))
	copy(vectors, idx.vectors)
	records := make([]Record, len(idx.records))
	copy(records, idx.records)
	return vectors, records
}

// Search returns the k nearest records by cosine similarity.
func (idx *Index) Search(query []float32, k int) []Scored {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	order, scores := idx.rank(query)
	if k > len(order) {
		k = len(order)
	}
	out := make([]Scored, 0, k)
	for _, i := range order[:k] {
		out = append(out, Scored{Record: idx.records[i], Score: scores[i]})
	}
	return out
}

// SearchMMR over-fetches a fetchK candidate pool by cosine similarity, then
// selects k results balancing relevance against mutual diversity with the
// maximal-marginal-relevance criterion. lambda 1 is pure relevance, 0 pure
// diversity.
func (idx *Index) SearchMMR(query []float32, k, fetchK int, lambda float64) []Scored {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	order, scores := idx.rank(query)
	if fetchK > len(order) {
		fetchK = len(order)
	}
	pool := order[:fetchK]

	if k > len(pool) {
		k = len(pool)
	}

	var selected []int
	remaining := append([]int(nil), pool...)
	for len(selected) < k {
		bestPos := -1
		bestScore := math.Inf(-1)
		for pos, cand := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosine(idx.vectors[cand], idx.vectors[s]); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*scores[cand] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}
		selected = append(selected, remaining[bestPos])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	out := make([]Scored, 0, len(selected))
	for _, i := range selected {
		out = append(out, Scored{Record: idx.records[i], Score: scores[i]})
	}
	return out
}

// rank computes cosine scores for every vector and returns the indices in
// descending score order. Caller holds the read lock.
func (idx *Index) rank(query []float32) ([]int, []float64) {
	scores := make([]float64, len(idx.vectors))
	for i, v := range idx.vectors {
		scores[i] = cosine(v, query)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	return order, scores
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
