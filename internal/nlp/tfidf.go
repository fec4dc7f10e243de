package nlp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/hyperjump/yoyaku/internal/ranking"
)

// TFIDFVectorizer builds one L2-normalized TF-IDF row per sentence over the
// vocabulary of a single corpus call. Each token sequence is one "document"
// for IDF purposes.
type TFIDFVectorizer struct {
	// Sublinear uses 1+ln(tf) instead of raw counts.
	Sublinear bool
}

// NewTFIDFVectorizer creates a new TFIDFVectorizer.
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{}
}

// Vocabulary returns the sorted distinct tokens of corpus.
func Vocabulary(corpus [][]string) []string {
	seen := make(map[string]bool)
	for _, tokens := range corpus {
		for _, t := range tokens {
			seen[t] = true
		}
	}
	vocab := make([]string, 0, len(seen))
	for t := range seen {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)
	return vocab
}

// Vectorize returns the TF-IDF matrix of corpus with smoothed IDF
// ln((1+N)/(1+df))+1. Rows without tokens stay all-zero.
func (v *TFIDFVectorizer) Vectorize(corpus [][]string) (*ranking.Vectors, error) {
	vocab := Vocabulary(corpus)
	index := make(map[string]int, len(vocab))
	for i, t := range vocab {
		index[t] = i
	}

	df := make([]float64, len(vocab))
	counts := make([]map[int]float64, len(corpus))
	for r, tokens := range corpus {
		counts[r] = make(map[int]float64, len(tokens))
		for _, t := range tokens {
			counts[r][index[t]]++
		}
		for j := range counts[r] {
			df[j]++
		}
	}

	n := float64(len(corpus))
	idf := make([]float64, len(vocab))
	for j := range idf {
		idf[j] = math.Log((1+n)/(1+df[j])) + 1
	}

	rows := make([][]float64, len(corpus))
	for r := range corpus {
		row := make([]float64, len(vocab))
		for j, tf := range counts[r] {
			if v.Sublinear {
				tf = 1 + math.Log(tf)
			}
			row[j] = tf * idf[j]
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		rows[r] = row
	}
	return ranking.NewVectors(rows)
}
