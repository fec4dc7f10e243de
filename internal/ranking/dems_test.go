package ranking

import (
	"errors"
	"math"
	"testing"
)

func genericSet() map[string]bool {
	m := make(map[string]bool)
	for _, v := range DefaultGenericVerbs {
		m[v] = true
	}
	return m
}

// annotated builds a fully annotated record from parallel token/tag/lemma slices.
func annotated(doc, pos int, tokens, tags, lemmas []string, entities []bool) SentenceRecord {
	if entities == nil {
		entities = make([]bool, len(tokens))
	}
	return SentenceRecord{DocID: doc, Position: pos, Tokens: tokens, POSTags: tags, Lemmas: lemmas, Entities: entities}
}

func demsTable() *FeatureTable {
	return NewFeatureTable([]SentenceRecord{
		annotated(1, 1,
			[]string{"Acme", "acquired", "Widgets", "for", "two", "billion", "dollars", "on", "Monday", "."},
			[]string{"NN", "VB", "NN", "IN", "CD", "CD", "NN", "IN", "NN", "."},
			[]string{"acme", "acquire", "widgets", "for", "two", "billion", "dollar", "on", "monday", "."},
			[]bool{true, false, true, false, false, false, false, false, true, false}),
		annotated(1, 2,
			[]string{"It", "was", "happy", "."},
			[]string{"PR", "VB", "JJ", "."},
			[]string{"it", "be", "happy", "."}, nil),
		annotated(1, 3,
			[]string{"They", "said", "he", "did", "it", "."},
			[]string{"PR", "VB", "PR", "VB", "PR", "."},
			[]string{"they", "say", "he", "do", "it", "."}, nil),
		annotated(2, 1,
			[]string{"Dogs", "bark", "loudly", "."},
			[]string{"NN", "VB", "RB", "."},
			[]string{"dog", "bark", "loudly", "."}, nil),
	})
}

func TestVerbSpecificity(t *testing.T) {
	generic := genericSet()
	tests := []struct {
		name     string
		tags     []string
		lemmas   []string
		entities []bool
		want     float64
	}{
		{"all specific", []string{"NN", "VB"}, []string{"dog", "bark"}, nil, 1},
		{"all generic", []string{"PR", "VB"}, []string{"it", "be"}, nil, 0},
		{"mixed", []string{"VB", "VB"}, []string{"say", "acquire"}, nil, 0.5},
		{"no verbs", []string{"NN", "JJ"}, []string{"dog", "big"}, nil, 0},
		{"entity is not a verb", []string{"VB", "VB"}, []string{"may", "acquire"}, []bool{true, false}, 1},
		{"full penn tags", []string{"VBD", "VBZ"}, []string{"acquire", "be"}, nil, 0.5},
		{"quotes tagged as verbs", []string{"PR", "VB", "VB", "NN", ".", "VB"}, []string{"he", "say", "\"", "stop", ".", "\""}, nil, 0},
		{"quote tagged as adjective", []string{"VB", "JJ", "VB"}, []string{"acquire", "\"", "\u201d"}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerbSpecificity(tt.tags, tt.lemmas, tt.entities, generic); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("VerbSpecificity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeadValue(t *testing.T) {
	if LeadValue(1, 5, LeadDecayInverse) != 1 || LeadValue(4, 5, LeadDecayInverse) != 0.25 {
		t.Error("inverse decay should be 1/position")
	}
	if LeadValue(1, 4, LeadDecayLinear) != 1 || LeadValue(3, 4, LeadDecayLinear) != 0.5 {
		t.Error("linear decay should be 1-(position-1)/n")
	}
	for p := 1; p < 10; p++ {
		if LeadValue(p+1, 10, LeadDecayLinear) >= LeadValue(p, 10, LeadDecayLinear) {
			t.Errorf("lead value must decrease at position %d", p)
		}
	}
}

func TestPronounScore(t *testing.T) {
	if PronounScore([]string{"NN", "VB"}) != 1 {
		t.Error("no pronouns should score 1")
	}
	if PronounScore([]string{"PRP", "VBD", "PRP$", "NN"}) != 1.0/3 {
		t.Error("two pronouns should score 1/3")
	}
	if PronounScore([]string{"WP", "VBZ"}) != 0.5 {
		t.Error("wh-pronouns count as pronouns")
	}
}

func TestSentenceLengthAndScore(t *testing.T) {
	tokens := []string{"New", "York", "City", "is", "big", "."}
	entities := []bool{true, true, true, false, false, false}
	if n := SentenceLength(tokens, entities); n != 3 {
		t.Errorf("SentenceLength() = %d, want 3 (entity run counts once, punctuation ignored)", n)
	}

	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{4, 0.5},
		{8, 1},
		{30, 1},
		{60, 0.5},
	}
	for _, tt := range tests {
		toks := make([]string, tt.n)
		for i := range toks {
			toks[i] = "word"
		}
		if got := LengthScore(toks, nil, 8, 30); got != tt.want {
			t.Errorf("LengthScore(%d tokens) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		pos, n int
		want   float64
	}{
		{1, 1, LocationBeginScore},
		{1, 9, LocationBeginScore},
		{3, 9, LocationBeginScore},
		{5, 9, LocationMiddleScore},
		{8, 9, LocationEndScore},
		{9, 9, LocationEndScore},
		{2, 2, LocationEndScore},
	}
	for _, tt := range tests {
		if got := LocationScore(tt.pos, tt.n); got != tt.want {
			t.Errorf("LocationScore(%d, %d) = %v, want %v", tt.pos, tt.n, got, tt.want)
		}
	}
}

func TestDEMSRanker_Rank(t *testing.T) {
	table := demsTable()
	if err := NewDEMSRanker(DefaultRankingConfig()).Rank(table, nil); err != nil {
		t.Fatal(err)
	}
	for _, col := range []Column{ColumnDEMS, ColumnVerbSpec, ColumnLeadValue, ColumnCountPronoun, ColumnSentLength, ColumnLocation} {
		values, ok := table.Column(col)
		if !ok || len(values) != table.Len() {
			t.Fatalf("column %s not fully written: %v", col, values)
		}
		for i, v := range values {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("%s row %d = %v outside [0,1]", col, i, v)
			}
		}
	}

	scores, _ := table.Column(ColumnDEMS)
	// The specific, pronoun-free lead sentence beats the pronoun-heavy ones.
	if scores[0] <= scores[1] || scores[0] <= scores[2] {
		t.Errorf("lead sentence should rank highest in doc 1: %v", scores[:3])
	}
	pron, _ := table.Column(ColumnCountPronoun)
	if pron[2] != 0.25 {
		t.Errorf("three pronouns should give 0.25, got %v", pron[2])
	}
}

func TestDEMSRanker_weights(t *testing.T) {
	cfg := DefaultRankingConfig()
	cfg.Weights = DEMSWeights{LeadValue: 1}
	table := demsTable()
	if err := NewDEMSRanker(cfg).Rank(table, nil); err != nil {
		t.Fatal(err)
	}
	scores, _ := table.Column(ColumnDEMS)
	lead, _ := table.Column(ColumnLeadValue)
	for i := range scores {
		if scores[i] != lead[i] {
			t.Errorf("with only lead weight, row %d composite %v should equal lead %v", i, scores[i], lead[i])
		}
	}

	f := DEMSFeatures{VerbSpecificity: 1, LeadValue: 1, Pronoun: 1, Length: 1, Location: 1}
	if got := f.Composite(DefaultRankingConfig().Weights); got != 1 {
		t.Errorf("all-ones features should compose to 1, got %v", got)
	}
}

func TestDEMSRanker_missingAnnotations(t *testing.T) {
	tests := []struct {
		name    string
		rec     SentenceRecord
		feature string
	}{
		{"no tokens", SentenceRecord{DocID: 1, Position: 1, Text: "x"}, "word tokens"},
		{"no tags", SentenceRecord{DocID: 1, Position: 1, Tokens: []string{"a"}, Lemmas: []string{"a"}, Entities: []bool{false}}, "pos tags"},
		{"no lemmas", SentenceRecord{DocID: 1, Position: 1, Tokens: []string{"a"}, POSTags: []string{"NN"}, Entities: []bool{false}}, "lemmas"},
		{"no entities", SentenceRecord{DocID: 1, Position: 1, Tokens: []string{"a"}, POSTags: []string{"NN"}, Lemmas: []string{"a"}}, "named-entity flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := annotated(1, 2, []string{"ok"}, []string{"NN"}, []string{"ok"}, nil)
			table := NewFeatureTable([]SentenceRecord{tt.rec, good})
			err := NewDEMSRanker(DefaultRankingConfig()).Rank(table, nil)
			var annErr *AnnotationError
			if !errors.As(err, &annErr) {
				t.Fatalf("Expected AnnotationError, got %v", err)
			}
			if annErr.Feature != tt.feature || annErr.DocID != 1 || annErr.Position != 1 {
				t.Errorf("unexpected error detail %+v", annErr)
			}
			if len(table.Columns()) != 0 {
				t.Errorf("no column may be written on failure, got %v", table.Columns())
			}
		})
	}
}

func TestDEMSRanker_singleSentence(t *testing.T) {
	table := NewFeatureTable([]SentenceRecord{
		annotated(1, 1, []string{"Dogs", "bark", "."}, []string{"NN", "VB", "."}, []string{"dog", "bark", "."}, nil),
	})
	if err := NewDEMSRanker(DefaultRankingConfig()).Rank(table, nil); err != nil {
		t.Fatal(err)
	}
	v, ok := table.Value(0, ColumnDEMS)
	if !ok || math.IsNaN(v) || v <= 0 {
		t.Errorf("single sentence should get a positive score, got %v", v)
	}
}
