package ranking

import "gonum.org/v1/gonum/floats"

// CentroidRanker scores each sentence by cosine similarity to the centroid
// of its document's TF-IDF vectors.
type CentroidRanker struct {
	config *RankingConfig
}

// NewCentroidRanker creates a new CentroidRanker.
func NewCentroidRanker(config *RankingConfig) *CentroidRanker {
	return &CentroidRanker{config: config}
}

// Strategy returns StrategyCentroid.
func (r *CentroidRanker) Strategy() Strategy { return StrategyCentroid }

// Column returns ColumnCentroid.
func (r *CentroidRanker) Column() Column { return ColumnCentroid }

// Rank writes the centroid similarity of every sentence. Scores lie in
// [-1, 1]; zero vectors score 0.
func (r *CentroidRanker) Rank(table *FeatureTable, vectors *Vectors) error {
	if table.Len() == 0 {
		return table.SetColumn(ColumnCentroid, nil)
	}
	if err := checkVectors(StrategyCentroid, table, vectors); err != nil {
		return err
	}
	values := make([]float64, table.Len())
	for _, span := range table.Documents() {
		centroid := Centroid(vectors, span, r.config.CentroidMode)
		for i := span.Start; i < span.End; i++ {
			values[i] = Cosine(vectors.Row(i), centroid)
		}
	}
	return table.SetColumn(ColumnCentroid, values)
}

// Centroid returns the element-wise sum or mean of the rows in span.
func Centroid(vectors *Vectors, span DocumentSpan, mode string) []float64 {
	centroid := make([]float64, vectors.Dim())
	if span.Len() == 0 {
		return centroid
	}
	for i := span.Start; i < span.End; i++ {
		floats.Add(centroid, vectors.Row(i))
	}
	if mode == CentroidMean {
		floats.Scale(1/float64(span.Len()), centroid)
	}
	return centroid
}
