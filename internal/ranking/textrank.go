package ranking

// TextRanker ranks sentences by centrality in a word-overlap graph.
type TextRanker struct {
	config *RankingConfig
}

// NewTextRanker creates a new TextRanker.
func NewTextRanker(config *RankingConfig) *TextRanker {
	return &TextRanker{config: config}
}

// Strategy returns StrategyTextRank.
func (r *TextRanker) Strategy() Strategy { return StrategyTextRank }

// Column returns ColumnTextRank.
func (r *TextRanker) Column() Column { return ColumnTextRank }

// Rank writes the TextRank centrality of every sentence. Rows need tokens;
// a sentence with no tokens at all is treated as an isolated node.
func (r *TextRanker) Rank(table *FeatureTable, _ *Vectors) error {
	if table.Len() > 0 && !anyTokens(table) {
		return missing(StrategyTextRank, "word tokens", table.Row(0))
	}
	return rankGraphs(table, ColumnTextRank, r.config, func(a, b int) float64 {
		return Overlap(table.Row(a).Tokens, table.Row(b).Tokens)
	})
}

// anyTokens reports whether at least one row was tokenized. A table where
// every row lacks tokens was built without a word tokenizer.
func anyTokens(table *FeatureTable) bool {
	for i := 0; i < table.Len(); i++ {
		if table.Row(i).Tokens != nil {
			return true
		}
	}
	return false
}
