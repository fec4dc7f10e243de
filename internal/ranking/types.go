// Package ranking scores sentences for extractive summarization.
//
// Every ranker reads a shared FeatureTable and writes exactly one rank column
// (DEMS also writes its sub-feature columns). Rankers hold no state between
// calls and never reorder rows; ordering is done by the caller via Order.
package ranking

import (
	"fmt"
	"strings"
)

// Strategy identifies a ranking algorithm.
type Strategy int

const (
	// StrategyLede selects the first sentence of each document.
	StrategyLede Strategy = iota
	// StrategyTextRank ranks by graph centrality over word overlap.
	StrategyTextRank
	// StrategyLexRank ranks by graph centrality over TF-IDF cosine similarity.
	StrategyLexRank
	// StrategyCentroid ranks by similarity to the document centroid.
	StrategyCentroid
	// StrategyDEMS ranks by a weighted combination of linguistic features.
	StrategyDEMS
)

// String returns a string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLede:
		return "lede"
	case StrategyTextRank:
		return "textrank"
	case StrategyLexRank:
		return "lexrank"
	case StrategyCentroid:
		return "centroid"
	case StrategyDEMS:
		return "dems"
	default:
		return "unknown"
	}
}

// Column returns the rank column the strategy writes.
func (s Strategy) Column() Column {
	switch s {
	case StrategyLede:
		return ColumnLede
	case StrategyTextRank:
		return ColumnTextRank
	case StrategyLexRank:
		return ColumnLexRank
	case StrategyCentroid:
		return ColumnCentroid
	case StrategyDEMS:
		return ColumnDEMS
	default:
		return ""
	}
}

// NeedsVectors reports whether the strategy consumes a TF-IDF matrix.
func (s Strategy) NeedsVectors() bool {
	return s == StrategyLexRank || s == StrategyCentroid
}

// Strategies lists every supported strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyLede, StrategyTextRank, StrategyLexRank, StrategyCentroid, StrategyDEMS}
}

// ParseStrategy parses a strategy name (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Strategies() {
		if s.String() == n {
			return s, nil
		}
	}
	// Column-style aliases.
	switch n {
	case "centroid_score":
		return StrategyCentroid, nil
	case "demsrank":
		return StrategyDEMS, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Column names a rank column in a FeatureTable.
type Column string

// Rank columns. The set is fixed; tables never grow ad hoc columns.
const (
	ColumnLede     Column = "rank:lede"
	ColumnTextRank Column = "rank:textrank"
	ColumnLexRank  Column = "rank:lexrank"
	ColumnCentroid Column = "rank:centroid_score"
	ColumnDEMS     Column = "rank:demsrank"

	// DEMS sub-feature columns.
	ColumnVerbSpec     Column = "rank:verbspec"
	ColumnLeadValue    Column = "rank:leadvalue"
	ColumnCountPronoun Column = "rank:countpronoun"
	ColumnSentLength   Column = "rank:sentlength"
	ColumnLocation     Column = "rank:location"
)

var knownColumns = map[Column]bool{
	ColumnLede:         true,
	ColumnTextRank:     true,
	ColumnLexRank:      true,
	ColumnCentroid:     true,
	ColumnDEMS:         true,
	ColumnVerbSpec:     true,
	ColumnLeadValue:    true,
	ColumnCountPronoun: true,
	ColumnSentLength:   true,
	ColumnLocation:     true,
}

// Ranker scores every row of a table and writes its rank column in place.
type Ranker interface {
	// Strategy returns the algorithm implemented by the ranker.
	Strategy() Strategy
	// Column returns the rank column written by Rank.
	Column() Column
	// Rank scores the table. vectors is the TF-IDF similarity input and may be
	// nil for strategies that do not use it.
	Rank(table *FeatureTable, vectors *Vectors) error
}

// NewRanker returns the ranker for strategy configured by config.
// A nil config uses DefaultRankingConfig.
func NewRanker(strategy Strategy, config *RankingConfig) (Ranker, error) {
	if config == nil {
		config = DefaultRankingConfig()
	}
	c := *config
	config = &c
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch strategy {
	case StrategyLede:
		return NewLedeRanker(), nil
	case StrategyTextRank:
		return NewTextRanker(config), nil
	case StrategyLexRank:
		return NewLexRanker(config), nil
	case StrategyCentroid:
		return NewCentroidRanker(config), nil
	case StrategyDEMS:
		return NewDEMSRanker(config), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, int(strategy))
	}
}
