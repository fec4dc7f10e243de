package ranking

// LedeRanker marks the first sentence of every document.
type LedeRanker struct{}

// NewLedeRanker creates a new LedeRanker.
func NewLedeRanker() *LedeRanker {
	return &LedeRanker{}
}

// Strategy returns StrategyLede.
func (r *LedeRanker) Strategy() Strategy { return StrategyLede }

// Column returns ColumnLede.
func (r *LedeRanker) Column() Column { return ColumnLede }

// Rank writes 1 for the sentence at position 1 and the position itself for
// every other sentence, so only lede rows compare equal to 1.
func (r *LedeRanker) Rank(table *FeatureTable, _ *Vectors) error {
	values := make([]float64, table.Len())
	for i := range values {
		values[i] = LedeRank(table.Row(i).Position)
	}
	return table.SetColumn(ColumnLede, values)
}

// LedeRank returns the lede rank for a sentence position.
func LedeRank(position int) float64 {
	if position <= 1 {
		return 1
	}
	return float64(position)
}
