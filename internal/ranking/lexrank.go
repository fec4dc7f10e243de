package ranking

// LexRanker ranks sentences by centrality in a TF-IDF cosine graph.
// With SimilarityThreshold 0 this is continuous LexRank; with a positive
// threshold, edges below it are dropped (thresholded LexRank).
type LexRanker struct {
	config *RankingConfig
}

// NewLexRanker creates a new LexRanker.
func NewLexRanker(config *RankingConfig) *LexRanker {
	return &LexRanker{config: config}
}

// Strategy returns StrategyLexRank.
func (r *LexRanker) Strategy() Strategy { return StrategyLexRank }

// Column returns ColumnLexRank.
func (r *LexRanker) Column() Column { return ColumnLexRank }

// Rank writes the LexRank centrality of every sentence.
func (r *LexRanker) Rank(table *FeatureTable, vectors *Vectors) error {
	if table.Len() == 0 {
		return table.SetColumn(ColumnLexRank, nil)
	}
	if err := checkVectors(StrategyLexRank, table, vectors); err != nil {
		return err
	}
	return rankGraphs(table, ColumnLexRank, r.config, func(a, b int) float64 {
		return r.edge(Cosine(vectors.Row(a), vectors.Row(b)))
	})
}

func (r *LexRanker) edge(sim float64) float64 {
	if sim <= 0 || sim < r.config.SimilarityThreshold {
		return 0
	}
	if r.config.LexRankBinary {
		return 1
	}
	return sim
}
