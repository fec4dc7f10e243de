package ranking

import (
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Graph is an undirected sentence-similarity graph for one document.
// Edge weights are symmetric and non-negative; self-loops are not stored.
type Graph struct {
	n int
	w *mat.SymDense
}

// NewGraph returns a graph with n nodes and no edges.
func NewGraph(n int) *Graph {
	g := &Graph{n: n}
	if n > 0 {
		g.w = mat.NewSymDense(n, nil)
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return g.n
}

// SetEdge sets the weight between i and j. Self-loops are ignored and
// negative or NaN weights are stored as 0.
func (g *Graph) SetEdge(i, j int, weight float64) {
	if i == j {
		return
	}
	if weight < 0 || math.IsNaN(weight) {
		weight = 0
	}
	g.w.SetSym(i, j, weight)
}

// Weight returns the edge weight between i and j.
func (g *Graph) Weight(i, j int) float64 {
	if i == j {
		return 0
	}
	return g.w.At(i, j)
}

// OutWeight returns the sum of edge weights leaving i.
func (g *Graph) OutWeight(i int) float64 {
	var sum float64
	for j := 0; j < g.n; j++ {
		sum += g.Weight(i, j)
	}
	return sum
}

// CentralityOptions configures the power iteration.
type CentralityOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

// DefaultCentralityOptions returns the solver defaults.
func DefaultCentralityOptions() CentralityOptions {
	return DefaultRankingConfig().centralityOptions()
}

// Centrality computes PageRank-style scores for g by power iteration:
//
//	score'(i) = (1-d)/n + d * Σ_j score(j) * w(j,i) / out(j)
//
// A node with no edges (out(j) == 0) spreads its score uniformly instead of
// dividing by zero, which keeps the scores a probability distribution.
// Iteration stops when the L1 change drops below Tolerance or after
// MaxIterations; hitting the cap is not an error and the last iterate is
// returned. The second result is the number of iterations performed.
func Centrality(g *Graph, opts CentralityOptions) ([]float64, int) {
	n := g.Len()
	switch n {
	case 0:
		return nil, 0
	case 1:
		return []float64{1}, 0
	}

	// Column-stochastic transition matrix: m[i][j] is the share of j's score
	// passed to i.
	m := mat.NewDense(n, n, nil)
	uniform := 1 / float64(n)
	for j := 0; j < n; j++ {
		out := g.OutWeight(j)
		for i := 0; i < n; i++ {
			if out == 0 {
				m.Set(i, j, uniform)
				continue
			}
			m.Set(i, j, g.Weight(j, i)/out)
		}
	}

	curData := make([]float64, n)
	nextData := make([]float64, n)
	for i := range curData {
		curData[i] = uniform
	}
	cur := mat.NewVecDense(n, curData)
	next := mat.NewVecDense(n, nextData)
	teleport := (1 - opts.Damping) * uniform

	iterations := 0
	for iterations < opts.MaxIterations {
		iterations++
		next.MulVec(m, cur)
		for i := range nextData {
			nextData[i] = teleport + opts.Damping*nextData[i]
		}
		delta := floats.Distance(curData, nextData, 1)
		copy(curData, nextData)
		if delta < opts.Tolerance {
			break
		}
	}
	return curData, iterations
}

// edgeWeight returns the similarity between two rows of one document.
type edgeWeight func(a, b int) float64

// rankGraphs builds one graph per document with weight, solves it, and
// writes the scores to col. Documents never share a graph.
func rankGraphs(table *FeatureTable, col Column, config *RankingConfig, weight edgeWeight) error {
	values := make([]float64, table.Len())
	solve := func(span DocumentSpan) {
		g := NewGraph(span.Len())
		for a := span.Start; a < span.End; a++ {
			for b := a + 1; b < span.End; b++ {
				g.SetEdge(a-span.Start, b-span.Start, weight(a, b))
			}
		}
		scores, _ := Centrality(g, config.centralityOptions())
		copy(values[span.Start:span.End], scores)
	}

	spans := table.Documents()
	if config.Parallel && len(spans) > 1 {
		// Each goroutine writes a disjoint slice of values.
		var eg errgroup.Group
		for _, span := range spans {
			span := span
			eg.Go(func() error {
				solve(span)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for _, span := range spans {
			solve(span)
		}
	}
	return table.SetColumn(col, values)
}
