package ranking

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vectors is a TF-IDF matrix with one row per table row, over a fixed
// vocabulary.
type Vectors struct {
	rows [][]float64
	dim  int
}

// NewVectors wraps rows as a matrix. Every row must have the same length.
func NewVectors(rows [][]float64) (*Vectors, error) {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), dim)
		}
	}
	return &Vectors{rows: rows, dim: dim}, nil
}

// Len returns the number of rows.
func (v *Vectors) Len() int {
	if v == nil {
		return 0
	}
	return len(v.rows)
}

// Dim returns the vocabulary size.
func (v *Vectors) Dim() int {
	if v == nil {
		return 0
	}
	return v.dim
}

// Row returns row i. Callers must not modify it.
func (v *Vectors) Row(i int) []float64 {
	return v.rows[i]
}

// checkVectors verifies vectors line up with the table rows.
func checkVectors(strategy Strategy, table *FeatureTable, vectors *Vectors) error {
	if vectors == nil {
		return missing(strategy, "tf-idf vectors", nil)
	}
	if vectors.Len() != table.Len() {
		return &AnnotationError{
			Strategy: strategy,
			Feature:  fmt.Sprintf("one tf-idf row per sentence (have %d rows for %d sentences)", vectors.Len(), table.Len()),
		}
	}
	return nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1, 1].
// A zero-norm vector is orthogonal to everything, so the result is 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := floats.Dot(a, a)
	nb := floats.Dot(b, b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / math.Sqrt(na*nb)
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	case math.IsNaN(sim):
		return 0
	}
	return sim
}

// Overlap returns the TextRank lexical similarity of two token sequences:
// the number of distinct shared tokens divided by log|a| + log|b|.
// Sequences with one token or fewer have no similarity to anything.
func Overlap(a, b []string) float64 {
	if len(a) <= 1 || len(b) <= 1 {
		return 0
	}
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		seen[t] = true
	}
	shared := 0
	for _, t := range b {
		if seen[t] {
			shared++
			delete(seen, t)
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(shared) / (math.Log(float64(len(a))) + math.Log(float64(len(b))))
}
