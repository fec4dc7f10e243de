package ranking

import (
	"fmt"
	"sort"
)

// SentenceRecord is one sentence of one document. Records are not modified
// after the table is built.
type SentenceRecord struct {
	// DocID is the 1-based index of the source document.
	DocID int `json:"doc"`
	// Position is the 1-based index of the sentence within its document.
	Position int `json:"position"`
	// Text is the original sentence.
	Text string `json:"text"`
	// Tokens are the words of the sentence (optional, strategy-dependent).
	Tokens []string `json:"tokens,omitempty"`
	// POSTags, Lemmas and Entities are aligned 1:1 with Tokens and only
	// needed by DEMS.
	POSTags  []string `json:"pos,omitempty"`
	Lemmas   []string `json:"lemmas,omitempty"`
	Entities []bool   `json:"entities,omitempty"`
}

// DocumentSpan is the contiguous row range [Start, End) of one document.
type DocumentSpan struct {
	DocID int
	Start int
	End   int
}

// Len returns the number of sentences in the span.
func (d DocumentSpan) Len() int {
	return d.End - d.Start
}

// FeatureTable is the ordered sentence table plus its rank columns.
type FeatureTable struct {
	rows    []SentenceRecord
	columns map[Column][]float64
}

// NewFeatureTable builds a table ordered by (DocID, Position) ascending.
func NewFeatureTable(records []SentenceRecord) *FeatureTable {
	rows := make([]SentenceRecord, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DocID != rows[j].DocID {
			return rows[i].DocID < rows[j].DocID
		}
		return rows[i].Position < rows[j].Position
	})
	return &FeatureTable{
		rows:    rows,
		columns: make(map[Column][]float64),
	}
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int {
	return len(t.rows)
}

// Row returns a pointer to row i. Callers must not modify it.
func (t *FeatureTable) Row(i int) *SentenceRecord {
	return &t.rows[i]
}

// Documents returns one span per document in row order.
func (t *FeatureTable) Documents() []DocumentSpan {
	var spans []DocumentSpan
	for i := 0; i < len(t.rows); {
		j := i + 1
		for j < len(t.rows) && t.rows[j].DocID == t.rows[i].DocID {
			j++
		}
		spans = append(spans, DocumentSpan{DocID: t.rows[i].DocID, Start: i, End: j})
		i = j
	}
	return spans
}

// SetColumn replaces column col with values. values must cover every row;
// otherwise nothing is written.
func (t *FeatureTable) SetColumn(col Column, values []float64) error {
	if !knownColumns[col] {
		return fmt.Errorf("unknown column %q", col)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: %s has %d values for %d rows", ErrColumnLength, col, len(values), len(t.rows))
	}
	stored := make([]float64, len(values))
	copy(stored, values)
	t.columns[col] = stored
	return nil
}

// Column returns a copy of column col and whether it has been written.
func (t *FeatureTable) Column(col Column) ([]float64, bool) {
	values, ok := t.columns[col]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, true
}

// Value returns the value of col at row i, or false if the column is unset.
func (t *FeatureTable) Value(i int, col Column) (float64, bool) {
	values, ok := t.columns[col]
	if !ok || i < 0 || i >= len(values) {
		return 0, false
	}
	return values[i], true
}

// Columns returns the written columns sorted by name.
func (t *FeatureTable) Columns() []Column {
	cols := make([]Column, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
	return cols
}

// Order returns row indices sorted by col. Equal scores keep (DocID,
// Position) ascending order. The table itself is not reordered.
func (t *FeatureTable) Order(col Column, descending bool) ([]int, error) {
	values, ok := t.columns[col]
	if !ok {
		return nil, fmt.Errorf("column %q has not been ranked", col)
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	// Rows are already in (DocID, Position) order, so a stable sort on the
	// score alone gives the tie-break.
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		if descending {
			return va > vb
		}
		return va < vb
	})
	return idx, nil
}
